// Package validator decides whether a candidate answer set is a valid
// submission against a survey, and builds the immutable response when it is.
// All failures for one submission are reported together so a respondent
// facing form can highlight every problem in one pass.
package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/WennovateHQ/teachgage-survey/internal/entity"
	"github.com/WennovateHQ/teachgage-survey/internal/registry"
)

// Clock supplies the current time. It is injected so the acceptance-window
// check stays deterministic under test.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// FieldError kinds.
const (
	KindMissingRequired = "missing_required"
	KindUnknownQuestion = "unknown_question"
	KindInvalidAnswer   = "invalid_answer"
)

type (
	// FieldError pins one validation failure to a question.
	FieldError struct {
		Kind       string    `json:"kind"`
		QuestionID uuid.UUID `json:"question_id"`
		Reason     string    `json:"reason"`
	}

	// ValidationError carries the complete ordered list of failures for one
	// submission: one missing_required entry per unanswered required
	// question, then one entry per rejected answer.
	ValidationError struct {
		Errors []FieldError
	}

	Validator struct {
		clock Clock
	}
)

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s %s: %s", fe.Kind, fe.QuestionID, fe.Reason))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

func Init(clock Clock) *Validator {
	return &Validator{clock: clock}
}

// Accepting reports whether the survey currently takes submissions: status
// must be active and the clock must fall inside the optional
// [StartDate, EndDate] window, both bounds inclusive.
func (v *Validator) Accepting(survey *entity.Survey) bool {
	if survey.Status != entity.StatusActive {
		return false
	}

	now := v.clock.Now()
	if survey.StartDate != nil && now.Before(*survey.StartDate) {
		return false
	}
	if survey.EndDate != nil && now.After(*survey.EndDate) {
		return false
	}
	return true
}

// Validate checks the answer set against the survey snapshot. It returns
// entity.ErrSurveyNotAcceptingResponses when the survey is not open, a
// *ValidationError listing every failure, or nil.
func (v *Validator) Validate(survey *entity.Survey, answers []entity.Answer) error {
	if !v.Accepting(survey) {
		return entity.ErrSurveyNotAcceptingResponses
	}

	answered := make(map[uuid.UUID]bool, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = true
	}

	var errs []FieldError

	for i := range survey.Questions {
		q := &survey.Questions[i]
		if q.Required && !answered[q.QuestionID] {
			errs = append(errs, FieldError{
				Kind:       KindMissingRequired,
				QuestionID: q.QuestionID,
				Reason:     entity.ErrMissingRequiredAnswer.Error(),
			})
		}
	}

	seen := make(map[uuid.UUID]bool, len(answers))
	for _, a := range answers {
		question := survey.QuestionByID(a.QuestionID)
		if question == nil {
			errs = append(errs, FieldError{
				Kind:       KindUnknownQuestion,
				QuestionID: a.QuestionID,
				Reason:     entity.ErrUnknownQuestion.Error(),
			})
			continue
		}

		if seen[a.QuestionID] {
			errs = append(errs, FieldError{
				Kind:       KindInvalidAnswer,
				QuestionID: a.QuestionID,
				Reason:     entity.ErrDuplicateAnswer.Error(),
			})
			continue
		}
		seen[a.QuestionID] = true

		if err := registry.ValidateValue(question, a.Value); err != nil {
			errs = append(errs, FieldError{
				Kind:       KindInvalidAnswer,
				QuestionID: a.QuestionID,
				Reason:     err.Error(),
			})
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// BuildResponse validates the answer set and, on success, constructs the
// immutable response record. The respondent id is dropped when the survey is
// anonymous.
func (v *Validator) BuildResponse(survey *entity.Survey, respondentID string, answers []entity.Answer) (*entity.Response, error) {
	if err := v.Validate(survey, answers); err != nil {
		return nil, err
	}

	response := &entity.Response{
		ID:          uuid.New(),
		SurveyID:    survey.ID,
		Anonymous:   survey.Anonymous,
		SubmittedAt: v.clock.Now(),
		Answers:     make([]entity.Answer, len(answers)),
	}
	if !survey.Anonymous {
		response.RespondentID = respondentID
	}

	for i, a := range answers {
		response.Answers[i] = entity.Answer{
			QuestionID: a.QuestionID,
			ResponseID: response.ID,
			Value:      a.Value,
		}
	}

	return response, nil
}
