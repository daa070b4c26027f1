package registry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/WennovateHQ/teachgage-survey/internal/entity"
)

// asNumber coerces the numeric representations a JSON decode can produce.
func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	default:
		return 0, false
	}
}

func asString(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

// asStringSlice accepts []string directly or the []any a JSON decode yields.
func asStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// asIndexMap accepts the statement-index to scale-index mapping of a likert
// answer in either native or JSON-decoded form.
func asIndexMap(value any) (map[int]int, bool) {
	switch v := value.(type) {
	case map[int]int:
		return v, true
	case map[string]any:
		out := make(map[int]int, len(v))
		for key, raw := range v {
			idx, err := strconv.Atoi(key)
			if err != nil {
				return nil, false
			}
			n, ok := asNumber(raw)
			if !ok || n != math.Trunc(n) {
				return nil, false
			}
			out[idx] = int(n)
		}
		return out, true
	case map[string]int:
		out := make(map[int]int, len(v))
		for key, n := range v {
			idx, err := strconv.Atoi(key)
			if err != nil {
				return nil, false
			}
			out[idx] = n
		}
		return out, true
	default:
		return nil, false
	}
}

func meanOf(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m, err := stats.Mean(values)
	if err != nil {
		return nil
	}
	return &m
}

// ratingHandler covers the 1..ScaleMax integer scale.
type ratingHandler struct{}

func (ratingHandler) ValidateConfig(cfg entity.QuestionConfig) error {
	if cfg.ScaleMax < 1 || cfg.ScaleMax > 10 {
		return fmt.Errorf("scale max %d out of range [1,10]", cfg.ScaleMax)
	}
	if len(cfg.ScaleLabels) != 0 && len(cfg.ScaleLabels) != cfg.ScaleMax {
		return fmt.Errorf("got %d scale labels for a %d-point scale", len(cfg.ScaleLabels), cfg.ScaleMax)
	}
	return nil
}

func (ratingHandler) ValidateValue(cfg entity.QuestionConfig, value any) error {
	n, ok := asNumber(value)
	if !ok || n != math.Trunc(n) {
		return errors.New("rating value must be an integer")
	}
	if n < 1 || n > float64(cfg.ScaleMax) {
		return fmt.Errorf("value exceeds scale bounds [1,%d]", cfg.ScaleMax)
	}
	return nil
}

func (ratingHandler) Score(cfg entity.QuestionConfig, values []any) Summary {
	dist := make([]int, cfg.ScaleMax)
	nums := make([]float64, 0, len(values))

	for _, value := range values {
		n, ok := asNumber(value)
		if !ok || n < 1 || n > float64(cfg.ScaleMax) {
			continue
		}
		dist[int(n)-1]++
		nums = append(nums, n)
	}

	return Summary{
		Count:        len(nums),
		Mean:         meanOf(nums),
		Distribution: dist,
	}
}

// multipleChoiceHandler covers single selection from a fixed choice list.
type multipleChoiceHandler struct{}

func (multipleChoiceHandler) ValidateConfig(cfg entity.QuestionConfig) error {
	if len(cfg.Choices) == 0 {
		return errors.New("choice list is empty")
	}
	return nil
}

func (multipleChoiceHandler) ValidateValue(cfg entity.QuestionConfig, value any) error {
	s, ok := asString(value)
	if !ok {
		return errors.New("choice value must be a string")
	}
	for _, choice := range cfg.Choices {
		if choice == s {
			return nil
		}
	}
	return errors.New("choice not in allowed set")
}

func (multipleChoiceHandler) Score(cfg entity.QuestionConfig, values []any) Summary {
	freq := make(map[string]int, len(cfg.Choices))
	for _, choice := range cfg.Choices {
		freq[choice] = 0
	}

	count := 0
	for _, value := range values {
		s, ok := asString(value)
		if !ok {
			continue
		}
		if _, known := freq[s]; !known {
			continue
		}
		freq[s]++
		count++
	}

	return Summary{Count: count, Frequencies: freq}
}

// checkboxHandler covers subset selection from a fixed choice list.
type checkboxHandler struct{}

func (checkboxHandler) ValidateConfig(cfg entity.QuestionConfig) error {
	if len(cfg.Choices) == 0 {
		return errors.New("choice list is empty")
	}
	return nil
}

func (checkboxHandler) ValidateValue(cfg entity.QuestionConfig, value any) error {
	selected, ok := asStringSlice(value)
	if !ok {
		return errors.New("checkbox value must be a list of strings")
	}

	allowed := make(map[string]bool, len(cfg.Choices))
	for _, choice := range cfg.Choices {
		allowed[choice] = true
	}

	seen := make(map[string]bool, len(selected))
	for _, s := range selected {
		if !allowed[s] {
			return fmt.Errorf("choice %q not in allowed set", s)
		}
		if seen[s] {
			return fmt.Errorf("duplicate choice %q", s)
		}
		seen[s] = true
	}
	return nil
}

func (checkboxHandler) Score(cfg entity.QuestionConfig, values []any) Summary {
	freq := make(map[string]int, len(cfg.Choices))
	for _, choice := range cfg.Choices {
		freq[choice] = 0
	}

	count := 0
	for _, value := range values {
		selected, ok := asStringSlice(value)
		if !ok {
			continue
		}
		count++
		for _, s := range selected {
			if _, known := freq[s]; known {
				freq[s]++
			}
		}
	}

	return Summary{Count: count, Frequencies: freq}
}

// freeformHandler covers text and textarea. The core imposes no length
// limit; that is a surface concern.
type freeformHandler struct{}

func (freeformHandler) ValidateConfig(entity.QuestionConfig) error { return nil }

func (freeformHandler) ValidateValue(_ entity.QuestionConfig, value any) error {
	if _, ok := asString(value); !ok {
		return errors.New("text value must be a string")
	}
	return nil
}

func (freeformHandler) Score(_ entity.QuestionConfig, values []any) Summary {
	count := 0
	for _, value := range values {
		if _, ok := asString(value); ok {
			count++
		}
	}
	return Summary{Count: count}
}

// numberHandler covers numeric values with optional bounds.
type numberHandler struct{}

func (numberHandler) ValidateConfig(cfg entity.QuestionConfig) error {
	if cfg.Min != nil && cfg.Max != nil && *cfg.Min > *cfg.Max {
		return fmt.Errorf("min %v greater than max %v", *cfg.Min, *cfg.Max)
	}
	return nil
}

func (numberHandler) ValidateValue(cfg entity.QuestionConfig, value any) error {
	n, ok := asNumber(value)
	if !ok {
		return errors.New("value must be a number")
	}
	if cfg.Min != nil && n < *cfg.Min {
		return fmt.Errorf("value below minimum %v", *cfg.Min)
	}
	if cfg.Max != nil && n > *cfg.Max {
		return fmt.Errorf("value above maximum %v", *cfg.Max)
	}
	return nil
}

func (numberHandler) Score(_ entity.QuestionConfig, values []any) Summary {
	nums := make([]float64, 0, len(values))
	for _, value := range values {
		if n, ok := asNumber(value); ok {
			nums = append(nums, n)
		}
	}

	summary := Summary{Count: len(nums), Mean: meanOf(nums)}
	if len(nums) > 0 {
		if min, err := stats.Min(nums); err == nil {
			summary.Min = &min
		}
		if max, err := stats.Max(nums); err == nil {
			summary.Max = &max
		}
	}
	return summary
}

// dateHandler covers calendar dates without a time component.
type dateHandler struct{}

func (dateHandler) ValidateConfig(entity.QuestionConfig) error { return nil }

func (dateHandler) ValidateValue(_ entity.QuestionConfig, value any) error {
	s, ok := asString(value)
	if !ok {
		return errors.New("date value must be a string")
	}
	if _, err := time.Parse(entity.DateLayout, s); err != nil {
		return fmt.Errorf("date must match %s", entity.DateLayout)
	}
	return nil
}

func (dateHandler) Score(_ entity.QuestionConfig, values []any) Summary {
	count := 0
	for _, value := range values {
		s, ok := asString(value)
		if !ok {
			continue
		}
		if _, err := time.Parse(entity.DateLayout, s); err == nil {
			count++
		}
	}
	return Summary{Count: count}
}

// yesNoHandler restricts values to exactly "yes" and "no".
type yesNoHandler struct{}

func (yesNoHandler) ValidateConfig(entity.QuestionConfig) error { return nil }

func (yesNoHandler) ValidateValue(_ entity.QuestionConfig, value any) error {
	s, ok := asString(value)
	if !ok || (s != "yes" && s != "no") {
		return errors.New("value must be yes or no")
	}
	return nil
}

func (yesNoHandler) Score(_ entity.QuestionConfig, values []any) Summary {
	freq := map[string]int{"yes": 0, "no": 0}
	count := 0
	for _, value := range values {
		s, ok := asString(value)
		if !ok {
			continue
		}
		if _, known := freq[s]; known {
			freq[s]++
			count++
		}
	}
	return Summary{Count: count, Frequencies: freq}
}

// likertHandler covers statement grids scored on a shared scale. An answer
// must cover every statement exactly once.
type likertHandler struct{}

func (likertHandler) ValidateConfig(cfg entity.QuestionConfig) error {
	if len(cfg.Statements) == 0 {
		return errors.New("statement list is empty")
	}
	if cfg.ScalePoints < 2 || cfg.ScalePoints > 10 {
		return fmt.Errorf("scale points %d out of range [2,10]", cfg.ScalePoints)
	}
	return nil
}

func (likertHandler) ValidateValue(cfg entity.QuestionConfig, value any) error {
	scores, ok := asIndexMap(value)
	if !ok {
		return errors.New("likert value must map statement index to scale index")
	}
	if len(scores) != len(cfg.Statements) {
		return fmt.Errorf("answered %d of %d statements", len(scores), len(cfg.Statements))
	}
	for idx, score := range scores {
		if idx < 0 || idx >= len(cfg.Statements) {
			return fmt.Errorf("statement index %d out of range", idx)
		}
		if score < 1 || score > cfg.ScalePoints {
			return fmt.Errorf("scale index %d out of range [1,%d]", score, cfg.ScalePoints)
		}
	}
	return nil
}

func (likertHandler) Score(cfg entity.QuestionConfig, values []any) Summary {
	perStatement := make([][]float64, len(cfg.Statements))
	dists := make([][]int, len(cfg.Statements))
	for i := range dists {
		dists[i] = make([]int, cfg.ScalePoints)
	}

	count := 0
	for _, value := range values {
		scores, ok := asIndexMap(value)
		if !ok {
			continue
		}
		count++
		for idx, score := range scores {
			if idx < 0 || idx >= len(cfg.Statements) || score < 1 || score > cfg.ScalePoints {
				continue
			}
			perStatement[idx] = append(perStatement[idx], float64(score))
			dists[idx][score-1]++
		}
	}

	statements := make([]StatementSummary, len(cfg.Statements))
	for i, statement := range cfg.Statements {
		statements[i] = StatementSummary{
			Statement:    statement,
			Mean:         meanOf(perStatement[i]),
			Distribution: dists[i],
		}
	}

	return Summary{Count: count, Statements: statements}
}
