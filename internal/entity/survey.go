// Package entity defines the core data structures used throughout the application
package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// SurveyStatus governs whether a survey accepts responses. Status changes go
// through Transition; nothing else may rewrite the field.
type SurveyStatus string

const (
	StatusDraft  SurveyStatus = "draft"
	StatusActive SurveyStatus = "active"
	StatusPaused SurveyStatus = "paused"
	StatusClosed SurveyStatus = "closed"
)

// transitions lists the only legal status edges. closed has no outgoing
// edges: it is terminal.
var transitions = map[SurveyStatus][]SurveyStatus{
	StatusDraft:  {StatusActive, StatusClosed},
	StatusActive: {StatusPaused, StatusClosed},
	StatusPaused: {StatusActive, StatusClosed},
	StatusClosed: {},
}

type (
	// Survey represents a questionnaire with its ordered questions and
	// response-acceptance settings
	Survey struct {
		ID                     uuid.UUID    `gorm:"type:uuid;primaryKey"` // Unique identifier
		Title                  string       // Title of the survey
		Description            string       // Survey description or purpose
		Status                 SurveyStatus // Lifecycle state, mutated only via Transition
		Anonymous              bool         // Whether responses omit respondent identity
		AllowMultipleResponses bool         // Whether one respondent may submit more than once
		StartDate              *time.Time   // Optional opening of the acceptance window
		EndDate                *time.Time   // Optional closing of the acceptance window
		Questions              []Question   `gorm:"foreignKey:SurveyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
		Author                 string       // Creator of the survey
		CreatedAt              time.Time    // Creation timestamp
	}

	// OutputSurvey is a DTO for survey data in outbound events
	OutputSurvey struct {
		ID                     string           `json:"id"`
		Title                  string           `json:"title"`
		Description            string           `json:"description"`
		Status                 string           `json:"status"`
		Anonymous              bool             `json:"anonymous"`
		AllowMultipleResponses bool             `json:"allow_multiple_responses"`
		StartDate              string           `json:"start_date,omitempty"`
		EndDate                string           `json:"end_date,omitempty"`
		Author                 string           `json:"author"`
		CreatedAt              string           `json:"created_at"`
		Questions              []OutputQuestion `json:"questions"`
	}
)

// NewSurvey creates a survey in draft state with a fresh identifier.
func NewSurvey(title, author string) *Survey {
	return &Survey{
		ID:        uuid.New(),
		Title:     title,
		Author:    author,
		Status:    StatusDraft,
		CreatedAt: time.Now(),
	}
}

func (s *Survey) Validate() error {
	if s.ID == uuid.Nil {
		return errors.New("survey ID can not be nil")
	}
	if s.Title == "" {
		return errors.New("survey title can not be empty")
	}
	if s.StartDate != nil && s.EndDate != nil && s.EndDate.Before(*s.StartDate) {
		return errors.New("survey end date is before start date")
	}

	return nil
}

// Transition moves the survey to the target status, enforcing the
// draft -> active -> {paused <-> active} -> closed machine. draft -> closed
// (abandon) is allowed. Activation requires a title and at least one
// question. On failure the status is left untouched.
func (s *Survey) Transition(target SurveyStatus) error {
	if s.Status == StatusClosed {
		return ErrSurveyAlreadyClosed
	}

	allowed := false
	for _, next := range transitions[s.Status] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, target)
	}

	if target == StatusActive && s.Status == StatusDraft {
		if s.Title == "" {
			return ErrCannotActivateUntitledSurvey
		}
		if len(s.Questions) == 0 {
			return ErrCannotActivateEmptySurvey
		}
	}

	s.Status = target
	return nil
}

// Locked reports whether structural changes (adding questions) are
// disallowed in the current status.
func (s *Survey) Locked() bool {
	return s.Status == StatusActive || s.Status == StatusClosed
}

// QuestionByID returns the question with the given identifier, or nil.
func (s *Survey) QuestionByID(id uuid.UUID) *Question {
	for i := range s.Questions {
		if s.Questions[i].QuestionID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// AddQuestion appends a question to the survey. The question keeps its id
// but gets the survey's id and the next order number. Fails when the id is
// already present or the survey no longer allows structural edits. Config
// validity is the registry's concern and must be checked before calling.
func (s *Survey) AddQuestion(q Question) error {
	if s.Locked() {
		return ErrSurveyLocked
	}
	if s.QuestionByID(q.QuestionID) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateQuestionID, q.QuestionID)
	}

	q.SurveyID = s.ID
	q.OrderNumber = uint(len(s.Questions)) + 1
	s.Questions = append(s.Questions, q)

	return nil
}

// RemoveQuestion deletes the question with the given id and renumbers the
// remainder. Structural edits stop once the survey is active or closed. The
// caller is responsible for first checking that no stored response
// references the question.
func (s *Survey) RemoveQuestion(id uuid.UUID) error {
	if s.Locked() {
		return ErrSurveyLocked
	}
	for i := range s.Questions {
		if s.Questions[i].QuestionID == id {
			s.Questions = append(s.Questions[:i], s.Questions[i+1:]...)
			for j := range s.Questions {
				s.Questions[j].OrderNumber = uint(j) + 1
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
}

// Reorder rearranges the questions to match ids, which must be a permutation
// of the current question identifiers. Like the other structural edits it is
// rejected once the survey is active or closed.
func (s *Survey) Reorder(ids []uuid.UUID) error {
	if s.Locked() {
		return ErrSurveyLocked
	}
	if len(ids) != len(s.Questions) {
		return ErrInvalidPermutation
	}

	byID := make(map[uuid.UUID]Question, len(s.Questions))
	for _, q := range s.Questions {
		byID[q.QuestionID] = q
	}

	ordered := make([]Question, 0, len(ids))
	for i, id := range ids {
		q, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown id %s", ErrInvalidPermutation, id)
		}
		delete(byID, id)
		q.OrderNumber = uint(i) + 1
		ordered = append(ordered, q)
	}

	s.Questions = ordered
	return nil
}

// ToOutput converts a Survey entity to its DTO representation
func (s *Survey) ToOutput() OutputSurvey {
	out := OutputSurvey{
		ID:                     s.ID.String(),
		Title:                  s.Title,
		Description:            s.Description,
		Status:                 string(s.Status),
		Anonymous:              s.Anonymous,
		AllowMultipleResponses: s.AllowMultipleResponses,
		Author:                 s.Author,
		CreatedAt:              s.CreatedAt.String(),
	}

	if s.StartDate != nil {
		out.StartDate = s.StartDate.Format(time.RFC3339)
	}
	if s.EndDate != nil {
		out.EndDate = s.EndDate.Format(time.RFC3339)
	}

	return out
}

// ToJson converts a Survey entity to its JSON representation
// including all related questions
func (s *Survey) ToJson() ([]byte, error) {
	survey := s.ToOutput()
	survey.Questions = make([]OutputQuestion, len(s.Questions))

	// Convert each question to its DTO form
	for i, q := range s.Questions {
		survey.Questions[i] = q.ToOutput()
	}

	// Marshal the complete survey to JSON
	surveyJson, err := sonic.Marshal(&survey)
	return surveyJson, err
}
