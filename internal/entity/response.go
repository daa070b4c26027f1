package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type (
	// Answer holds one response's value for a single question. The value is
	// a type-specific payload: a number for rating/number, a string for
	// choice/text/date, a string list for checkbox, "yes"/"no" for yes_no
	// and a statement-index to scale-index map for likert.
	Answer struct {
		QuestionID uuid.UUID `json:"question_id" gorm:"type:uuid;index"`
		Value      any       `json:"value" gorm:"serializer:json"`

		ID         uint      `json:"-" gorm:"primaryKey"`
		ResponseID uuid.UUID `json:"-" gorm:"type:uuid;index"`
	}

	// Response represents one respondent's completed submission. It is
	// created only by the validator and never edited afterwards;
	// corrections are new responses.
	Response struct {
		ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
		SurveyID     uuid.UUID `json:"survey_id" gorm:"type:uuid;index"`
		RespondentID string    `json:"respondent_id,omitempty"` // empty when anonymous
		Anonymous    bool      `json:"anonymous"`
		SubmittedAt  time.Time `json:"submitted_at"`
		Answers      []Answer  `json:"answers" gorm:"foreignKey:ResponseID;references:ID;constraint:OnDelete:CASCADE"`
	}
)

func (r *Response) Validate() error {
	if r.ID == uuid.Nil {
		return errors.New("response ID can not be nil")
	}
	if r.SurveyID == uuid.Nil {
		return errors.New("response survey ID can not be nil")
	}
	if len(r.Answers) == 0 {
		return errors.New("response has no answers")
	}

	return nil
}

// AnswerFor returns the answer for the given question, or nil when the
// response does not contain one.
func (r *Response) AnswerFor(questionID uuid.UUID) *Answer {
	for i := range r.Answers {
		if r.Answers[i].QuestionID == questionID {
			return &r.Answers[i]
		}
	}
	return nil
}
