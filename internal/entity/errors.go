package entity

import "errors"

// Schema errors. All of them are caller-recoverable: the editing surface is
// expected to show them next to the offending field and leave the survey as
// it was.
var (
	ErrDuplicateQuestionID   = errors.New("question id already exists in survey")
	ErrInvalidQuestionConfig = errors.New("invalid question config")
	ErrSurveyLocked          = errors.New("survey is locked for structural changes")
	ErrQuestionNotFound      = errors.New("question not found in survey")
	ErrQuestionInUse         = errors.New("question has stored answers")
	ErrInvalidPermutation    = errors.New("reorder ids are not a permutation of survey questions")
)

// Lifecycle errors.
var (
	ErrCannotActivateEmptySurvey    = errors.New("cannot activate survey without questions")
	ErrCannotActivateUntitledSurvey = errors.New("cannot activate survey without title")
	ErrSurveyAlreadyClosed          = errors.New("survey is closed")
	ErrInvalidTransition            = errors.New("invalid status transition")
)

// Submission errors.
var (
	ErrSurveyNotAcceptingResponses = errors.New("survey is not accepting responses")
	ErrUnknownQuestion             = errors.New("answer references unknown question")
	ErrMissingRequiredAnswer       = errors.New("required question has no answer")
	ErrDuplicateAnswer             = errors.New("multiple answers for one question")
)

var ErrUnknownQuestionType = errors.New("unknown question type")
