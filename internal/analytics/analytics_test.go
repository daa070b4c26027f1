package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WennovateHQ/teachgage-survey/internal/entity"
	"github.com/WennovateHQ/teachgage-survey/internal/validator"
)

// evaluationSurvey builds an active survey with a required rating question,
// an optional yes_no question and an optional text question.
func evaluationSurvey(t *testing.T) *entity.Survey {
	t.Helper()

	survey := entity.NewSurvey("Course Evaluation", "prof")
	require.NoError(t, survey.AddQuestion(
		entity.NewQuestion(entity.TypeRating, "overall", true, entity.QuestionConfig{ScaleMax: 5}),
	))
	require.NoError(t, survey.AddQuestion(
		entity.NewQuestion(entity.TypeYesNo, "recommend?", false, entity.QuestionConfig{}),
	))
	require.NoError(t, survey.AddQuestion(
		entity.NewQuestion(entity.TypeText, "comments", false, entity.QuestionConfig{}),
	))
	require.NoError(t, survey.Transition(entity.StatusActive))
	return survey
}

func response(survey *entity.Survey, answers ...entity.Answer) entity.Response {
	id := uuid.New()
	for i := range answers {
		answers[i].ResponseID = id
	}
	return entity.Response{
		ID:          id,
		SurveyID:    survey.ID,
		SubmittedAt: time.Now(),
		Answers:     answers,
	}
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name        string
		responses   int
		invitations int
		want        float64
	}{
		{"no invitations", 3, 0, 0},
		{"no responses", 0, 10, 0},
		{"half", 5, 10, 0.5},
		{"all", 10, 10, 1},
		{"more responses than invitations is clamped", 10, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompletionRate(tt.responses, tt.invitations)

			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestPerQuestionSummary_CountsAndRates(t *testing.T) {
	survey := evaluationSurvey(t)
	rating := survey.Questions[0].QuestionID
	yesNo := survey.Questions[1].QuestionID

	responses := []entity.Response{
		response(survey,
			entity.Answer{QuestionID: rating, Value: 5},
			entity.Answer{QuestionID: yesNo, Value: "yes"},
		),
		response(survey,
			entity.Answer{QuestionID: rating, Value: 3},
		),
	}

	summaries, err := PerQuestionSummary(survey, responses)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, 2, summaries[0].AnswerCount)
	assert.InDelta(t, 1.0, summaries[0].ResponseRate, 1e-9)
	require.NotNil(t, summaries[0].Score.Mean)
	assert.InDelta(t, 4.0, *summaries[0].Score.Mean, 1e-9)

	assert.Equal(t, 1, summaries[1].AnswerCount)
	assert.InDelta(t, 0.5, summaries[1].ResponseRate, 1e-9)
	assert.Equal(t, map[string]int{"yes": 1, "no": 0}, summaries[1].Score.Frequencies)

	// Unanswered optional question: zero count, not a zero value
	assert.Equal(t, 0, summaries[2].AnswerCount)
	assert.InDelta(t, 0.0, summaries[2].ResponseRate, 1e-9)
}

func TestPerQuestionSummary_NoResponses(t *testing.T) {
	survey := evaluationSurvey(t)

	summaries, err := PerQuestionSummary(survey, nil)
	require.NoError(t, err)

	for _, s := range summaries {
		assert.Equal(t, 0, s.AnswerCount)
		assert.InDelta(t, 0.0, s.ResponseRate, 1e-9)
	}
}

func TestPerQuestionSummary_FiltersForeignResponses(t *testing.T) {
	survey := evaluationSurvey(t)
	rating := survey.Questions[0].QuestionID

	foreign := response(survey, entity.Answer{QuestionID: rating, Value: 5})
	foreign.SurveyID = uuid.New()

	summaries, err := PerQuestionSummary(survey, []entity.Response{foreign})
	require.NoError(t, err)

	assert.Equal(t, 0, summaries[0].AnswerCount, "mismatched survey id is excluded, not raised")
}

// A response built by the validator must be counted exactly once per
// question it answered.
func TestPerQuestionSummary_RoundTrip(t *testing.T) {
	survey := evaluationSurvey(t)
	clock := validator.ClockFunc(func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) })
	v := validator.Init(clock)

	built, err := v.BuildResponse(survey, "student-1", []entity.Answer{
		{QuestionID: survey.Questions[0].QuestionID, Value: 4},
		{QuestionID: survey.Questions[1].QuestionID, Value: "no"},
	})
	require.NoError(t, err)

	summaries, err := PerQuestionSummary(survey, []entity.Response{*built})
	require.NoError(t, err)

	assert.Equal(t, 1, summaries[0].AnswerCount)
	assert.Equal(t, 1, summaries[1].AnswerCount)
	assert.Equal(t, map[string]int{"yes": 0, "no": 1}, summaries[1].Score.Frequencies)
	assert.Equal(t, 0, summaries[2].AnswerCount)
}

func TestOverallAverageRating(t *testing.T) {
	survey := entity.NewSurvey("Course Evaluation", "prof")
	require.NoError(t, survey.AddQuestion(
		entity.NewQuestion(entity.TypeRating, "content", true, entity.QuestionConfig{ScaleMax: 5}),
	))
	require.NoError(t, survey.AddQuestion(
		entity.NewQuestion(entity.TypeRating, "delivery", true, entity.QuestionConfig{ScaleMax: 5}),
	))
	require.NoError(t, survey.Transition(entity.StatusActive))

	content := survey.Questions[0].QuestionID
	delivery := survey.Questions[1].QuestionID

	responses := []entity.Response{
		response(survey,
			entity.Answer{QuestionID: content, Value: 4},
			entity.Answer{QuestionID: delivery, Value: 2},
		),
		response(survey,
			entity.Answer{QuestionID: content, Value: 2},
			entity.Answer{QuestionID: delivery, Value: 4},
		),
	}

	overall := OverallAverageRating(survey, responses)

	require.NotNil(t, overall)
	assert.InDelta(t, 3.0, *overall, 1e-9)
}

func TestOverallAverageRating_NilCases(t *testing.T) {
	noRatings := entity.NewSurvey("Course Evaluation", "prof")
	require.NoError(t, noRatings.AddQuestion(
		entity.NewQuestion(entity.TypeText, "comments", false, entity.QuestionConfig{}),
	))
	assert.Nil(t, OverallAverageRating(noRatings, nil), "no rating questions")

	withRating := evaluationSurvey(t)
	assert.Nil(t, OverallAverageRating(withRating, nil), "no responses")

	// An unanswered rating question contributes nothing, it does not drag
	// the average toward zero
	unanswered := response(withRating, entity.Answer{QuestionID: withRating.Questions[1].QuestionID, Value: "yes"})
	assert.Nil(t, OverallAverageRating(withRating, []entity.Response{unanswered}))
}

func TestSummarize(t *testing.T) {
	survey := evaluationSurvey(t)
	rating := survey.Questions[0].QuestionID

	responses := []entity.Response{
		response(survey, entity.Answer{QuestionID: rating, Value: 5}),
		response(survey, entity.Answer{QuestionID: rating, Value: 4}),
	}

	summary, err := Summarize(survey, responses, 4)

	require.NoError(t, err)
	assert.Equal(t, survey.ID, summary.SurveyID)
	assert.Equal(t, 2, summary.ResponseCount)
	assert.InDelta(t, 0.5, summary.CompletionRate, 1e-9)
	require.NotNil(t, summary.OverallAverageRating)
	assert.InDelta(t, 4.5, *summary.OverallAverageRating, 1e-9)
	require.Len(t, summary.Questions, 3)
}

func TestSummarize_EmptySurveyNoInvites(t *testing.T) {
	survey := evaluationSurvey(t)

	summary, err := Summarize(survey, nil, 0)

	require.NoError(t, err)
	assert.Equal(t, 0, summary.ResponseCount)
	assert.InDelta(t, 0.0, summary.CompletionRate, 1e-9)
	assert.Nil(t, summary.OverallAverageRating)
}
