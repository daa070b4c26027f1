// Package registry is the single source of truth for the closed set of
// question types: per-type configuration checks, answer validation and
// scoring all dispatch through here. Handlers are pure; nothing in this
// package has side effects.
package registry

import (
	"fmt"

	"github.com/WennovateHQ/teachgage-survey/internal/entity"
)

type (
	// Handler bundles the three per-type rules for one question type tag.
	Handler interface {
		// ValidateConfig checks the type-specific configuration shape.
		ValidateConfig(cfg entity.QuestionConfig) error
		// ValidateValue checks one answer value against the configuration.
		ValidateValue(cfg entity.QuestionConfig, value any) error
		// Score aggregates the answer values present for one question.
		Score(cfg entity.QuestionConfig, values []any) Summary
	}

	// StatementSummary is the per-statement aggregate of a likert question.
	StatementSummary struct {
		Statement    string   `json:"statement"`
		Mean         *float64 `json:"mean,omitempty"`
		Distribution []int    `json:"distribution"`
	}

	// Summary is the type-specific aggregate over the answers to one
	// question. Which fields are set depends on the question type: mean and
	// distribution for rating, frequencies for the choice-like types, mean
	// with min/max for number, per-statement summaries for likert and a
	// bare count for the free-form types.
	Summary struct {
		Count        int                `json:"count"`
		Mean         *float64           `json:"mean,omitempty"`
		Min          *float64           `json:"min,omitempty"`
		Max          *float64           `json:"max,omitempty"`
		Distribution []int              `json:"distribution,omitempty"`
		Frequencies  map[string]int     `json:"frequencies,omitempty"`
		Statements   []StatementSummary `json:"statements,omitempty"`
	}
)

var handlers = map[entity.QuestionType]Handler{
	entity.TypeRating:         ratingHandler{},
	entity.TypeMultipleChoice: multipleChoiceHandler{},
	entity.TypeCheckbox:       checkboxHandler{},
	entity.TypeText:           freeformHandler{},
	entity.TypeTextarea:       freeformHandler{},
	entity.TypeNumber:         numberHandler{},
	entity.TypeDate:           dateHandler{},
	entity.TypeYesNo:          yesNoHandler{},
	entity.TypeLikert:         likertHandler{},
}

// Lookup returns the handler for the given type tag. An unknown tag is a
// configuration error and must never be ignored by callers.
func Lookup(qtype entity.QuestionType) (Handler, error) {
	h, ok := handlers[qtype]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownQuestionType, qtype)
	}
	return h, nil
}

// ValidateConfig checks a question's configuration against its type.
func ValidateConfig(q *entity.Question) error {
	h, err := Lookup(q.Type)
	if err != nil {
		return err
	}
	if err := h.ValidateConfig(q.Config); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidQuestionConfig, err)
	}
	return nil
}

// ValidateValue checks one answer value against the question's type rules.
func ValidateValue(q *entity.Question, value any) error {
	h, err := Lookup(q.Type)
	if err != nil {
		return err
	}
	return h.ValidateValue(q.Config, value)
}

// Score aggregates the answer values submitted for one question.
func Score(q *entity.Question, values []any) (Summary, error) {
	h, err := Lookup(q.Type)
	if err != nil {
		return Summary{}, err
	}
	return h.Score(q.Config, values), nil
}
