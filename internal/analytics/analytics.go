// Package analytics turns a survey and its stored responses into the summary
// view backing dashboards. Aggregation is read-only best-effort reporting:
// responses that do not belong to the survey are filtered out, never raised.
package analytics

import (
	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"github.com/WennovateHQ/teachgage-survey/internal/entity"
	"github.com/WennovateHQ/teachgage-survey/internal/registry"
)

type (
	// QuestionSummary is the per-question slice of a survey summary.
	QuestionSummary struct {
		QuestionID   uuid.UUID        `json:"question_id"`
		Prompt       string           `json:"prompt"`
		Type         string           `json:"type"`
		AnswerCount  int              `json:"answer_count"`
		ResponseRate float64          `json:"response_rate"` // answered / responses, 0 with no responses
		Score        registry.Summary `json:"score"`
	}

	// SurveySummary is the full analytics view for one survey.
	SurveySummary struct {
		SurveyID             uuid.UUID         `json:"survey_id"`
		ResponseCount        int               `json:"response_count"`
		CompletionRate       float64           `json:"completion_rate"`
		OverallAverageRating *float64          `json:"overall_average_rating,omitempty"`
		Questions            []QuestionSummary `json:"questions"`
	}
)

// filterForSurvey drops responses whose survey id does not match.
func filterForSurvey(survey *entity.Survey, responses []entity.Response) []entity.Response {
	matched := make([]entity.Response, 0, len(responses))
	for _, r := range responses {
		if r.SurveyID == survey.ID {
			matched = append(matched, r)
		}
	}
	return matched
}

// CompletionRate is the fraction of invited respondents who submitted,
// clamped to [0,1]. Zero invitations yield 0, never a division error.
func CompletionRate(responseCount, invitationCount int) float64 {
	if invitationCount <= 0 {
		return 0
	}
	rate := float64(responseCount) / float64(invitationCount)
	if rate > 1 {
		return 1
	}
	if rate < 0 {
		return 0
	}
	return rate
}

// PerQuestionSummary computes, for each question, how many responses
// answered it and the type-specific score over only the answers present.
// Missing optional answers are excluded, not zero-filled.
func PerQuestionSummary(survey *entity.Survey, responses []entity.Response) ([]QuestionSummary, error) {
	matched := filterForSurvey(survey, responses)

	summaries := make([]QuestionSummary, 0, len(survey.Questions))
	for i := range survey.Questions {
		q := &survey.Questions[i]

		values := make([]any, 0, len(matched))
		for j := range matched {
			if a := matched[j].AnswerFor(q.QuestionID); a != nil {
				values = append(values, a.Value)
			}
		}

		score, err := registry.Score(q, values)
		if err != nil {
			return nil, err
		}

		rate := 0.0
		if len(matched) > 0 {
			rate = float64(len(values)) / float64(len(matched))
		}

		summaries = append(summaries, QuestionSummary{
			QuestionID:   q.QuestionID,
			Prompt:       q.Prompt,
			Type:         string(q.Type),
			AnswerCount:  len(values),
			ResponseRate: rate,
			Score:        score,
		})
	}

	return summaries, nil
}

// OverallAverageRating is the mean of all rating-question means. It is nil
// when the survey has no rating questions or none of them were answered;
// nil and 0 must stay distinguishable.
func OverallAverageRating(survey *entity.Survey, responses []entity.Response) *float64 {
	matched := filterForSurvey(survey, responses)

	means := make([]float64, 0, len(survey.Questions))
	for i := range survey.Questions {
		q := &survey.Questions[i]
		if q.Type != entity.TypeRating {
			continue
		}

		values := make([]any, 0, len(matched))
		for j := range matched {
			if a := matched[j].AnswerFor(q.QuestionID); a != nil {
				values = append(values, a.Value)
			}
		}

		score, err := registry.Score(q, values)
		if err != nil || score.Mean == nil {
			continue
		}
		means = append(means, *score.Mean)
	}

	if len(means) == 0 {
		return nil
	}
	overall, err := stats.Mean(means)
	if err != nil {
		return nil
	}
	return &overall
}

// Summarize assembles the full analytics view for one survey.
func Summarize(survey *entity.Survey, responses []entity.Response, invitationCount int) (*SurveySummary, error) {
	matched := filterForSurvey(survey, responses)

	questions, err := PerQuestionSummary(survey, matched)
	if err != nil {
		return nil, err
	}

	return &SurveySummary{
		SurveyID:             survey.ID,
		ResponseCount:        len(matched),
		CompletionRate:       CompletionRate(len(matched), invitationCount),
		OverallAverageRating: OverallAverageRating(survey, matched),
		Questions:            questions,
	}, nil
}
