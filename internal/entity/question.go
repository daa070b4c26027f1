package entity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionType tags the closed set of question variants. Validation and
// scoring for each tag live in the registry package; everything else treats
// the tag as opaque.
type QuestionType string

const (
	TypeRating         QuestionType = "rating"
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeCheckbox       QuestionType = "checkbox"
	TypeText           QuestionType = "text"
	TypeTextarea       QuestionType = "textarea"
	TypeNumber         QuestionType = "number"
	TypeDate           QuestionType = "date"
	TypeYesNo          QuestionType = "yes_no"
	TypeLikert         QuestionType = "likert"
)

// DateLayout is the calendar-date format accepted for date answers.
const DateLayout = "2006-01-02"

type (
	// QuestionConfig carries the per-type configuration. Only the fields
	// belonging to the question's type are meaningful; the registry rejects
	// configs whose relevant fields are malformed.
	QuestionConfig struct {
		ScaleMax    int      `json:"scale_max,omitempty"`    // rating: top of the 1..ScaleMax scale
		ScaleLabels []string `json:"scale_labels,omitempty"` // rating: optional per-point labels
		Choices     []string `json:"choices,omitempty"`      // multiple_choice, checkbox
		Placeholder string   `json:"placeholder,omitempty"`  // text, textarea
		Min         *float64 `json:"min,omitempty"`          // number
		Max         *float64 `json:"max,omitempty"`          // number
		Statements  []string `json:"statements,omitempty"`   // likert
		ScalePoints int      `json:"scale_points,omitempty"` // likert: shared 1..ScalePoints scale
	}

	// Question represents a single typed prompt within a survey
	Question struct {
		gorm.Model
		QuestionID  uuid.UUID      `gorm:"type:uuid;index"` // Identifier unique within the parent survey
		SurveyID    uuid.UUID      `gorm:"type:uuid"`       // Reference to the parent survey
		Type        QuestionType   // Variant tag, one of the Type* constants
		Prompt      string         // The question text shown to respondents
		Required    bool           // Whether a completed response must answer it
		OrderNumber uint           // Position of question in survey
		Config      QuestionConfig `gorm:"serializer:json"` // Type-specific configuration
	}

	// OutputQuestion is a DTO for question data in outbound events
	OutputQuestion struct {
		ID          string         `json:"id"`
		Type        string         `json:"type"`
		Prompt      string         `json:"prompt"`
		Required    bool           `json:"required"`
		OrderNumber uint           `json:"order_number"`
		Config      QuestionConfig `json:"config"`
	}
)

// ToOutput converts a Question entity to its DTO representation
func (q *Question) ToOutput() OutputQuestion {
	return OutputQuestion{
		ID:          q.QuestionID.String(),
		Type:        string(q.Type),
		Prompt:      q.Prompt,
		Required:    q.Required,
		OrderNumber: q.OrderNumber,
		Config:      q.Config,
	}
}

// NewQuestion builds a question with a fresh identifier. The config is not
// checked here; the registry owns per-type validation.
func NewQuestion(qtype QuestionType, prompt string, required bool, cfg QuestionConfig) Question {
	return Question{
		QuestionID: uuid.New(),
		Type:       qtype,
		Prompt:     prompt,
		Required:   required,
		Config:     cfg,
	}
}
