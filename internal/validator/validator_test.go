package validator

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WennovateHQ/teachgage-survey/internal/entity"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() Clock {
	return ClockFunc(func() time.Time { return testNow })
}

// ratingSurvey builds an active survey with one required 1..5 rating question.
func ratingSurvey(t *testing.T) *entity.Survey {
	t.Helper()

	survey := entity.NewSurvey("Course Evaluation", "prof")
	require.NoError(t, survey.AddQuestion(
		entity.NewQuestion(entity.TypeRating, "How useful was the course?", true, entity.QuestionConfig{ScaleMax: 5}),
	))
	require.NoError(t, survey.Transition(entity.StatusActive))
	return survey
}

func answerFor(survey *entity.Survey, index int, value any) entity.Answer {
	return entity.Answer{QuestionID: survey.Questions[index].QuestionID, Value: value}
}

func TestValidate_DraftSurveyRejected(t *testing.T) {
	survey := entity.NewSurvey("Course Evaluation", "prof")
	require.NoError(t, survey.AddQuestion(
		entity.NewQuestion(entity.TypeRating, "rate", true, entity.QuestionConfig{ScaleMax: 5}),
	))

	v := Init(fixedClock())
	err := v.Validate(survey, []entity.Answer{answerFor(survey, 0, 4)})

	assert.ErrorIs(t, err, entity.ErrSurveyNotAcceptingResponses)
}

func TestValidate_PausedAndClosedRejected(t *testing.T) {
	survey := ratingSurvey(t)
	v := Init(fixedClock())
	answers := []entity.Answer{answerFor(survey, 0, 4)}

	require.NoError(t, survey.Transition(entity.StatusPaused))
	assert.ErrorIs(t, v.Validate(survey, answers), entity.ErrSurveyNotAcceptingResponses)

	require.NoError(t, survey.Transition(entity.StatusClosed))
	assert.ErrorIs(t, v.Validate(survey, answers), entity.ErrSurveyNotAcceptingResponses)
}

func TestValidate_Window(t *testing.T) {
	v := Init(fixedClock())

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		accepting bool
	}{
		{"inside window", testNow.Add(-time.Hour), testNow.Add(time.Hour), true},
		{"before window", testNow.Add(time.Hour), testNow.Add(2 * time.Hour), false},
		{"after window", testNow.Add(-2 * time.Hour), testNow.Add(-time.Hour), false},
		{"at start bound", testNow, testNow.Add(time.Hour), true},
		{"at end bound", testNow.Add(-time.Hour), testNow, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			survey := ratingSurvey(t)
			survey.StartDate = &tt.start
			survey.EndDate = &tt.end

			assert.Equal(t, tt.accepting, v.Accepting(survey))
		})
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	survey := ratingSurvey(t)
	v := Init(fixedClock())

	err := v.Validate(survey, nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, KindMissingRequired, verr.Errors[0].Kind)
	assert.Equal(t, survey.Questions[0].QuestionID, verr.Errors[0].QuestionID)
}

func TestValidate_InvalidValue(t *testing.T) {
	survey := ratingSurvey(t)
	v := Init(fixedClock())

	err := v.Validate(survey, []entity.Answer{answerFor(survey, 0, 6)})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, KindInvalidAnswer, verr.Errors[0].Kind)
	assert.Contains(t, verr.Errors[0].Reason, "scale bounds")
}

func TestValidate_UnknownQuestion(t *testing.T) {
	survey := ratingSurvey(t)
	v := Init(fixedClock())

	unknown := uuid.New()
	err := v.Validate(survey, []entity.Answer{
		answerFor(survey, 0, 4),
		{QuestionID: unknown, Value: "stray"},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, KindUnknownQuestion, verr.Errors[0].Kind)
	assert.Equal(t, unknown, verr.Errors[0].QuestionID)
}

func TestValidate_DuplicateAnswer(t *testing.T) {
	survey := ratingSurvey(t)
	v := Init(fixedClock())

	err := v.Validate(survey, []entity.Answer{
		answerFor(survey, 0, 4),
		answerFor(survey, 0, 5),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, KindInvalidAnswer, verr.Errors[0].Kind)
	assert.Contains(t, verr.Errors[0].Reason, "multiple answers")
}

// Every missing required question and every invalid answer must be reported
// together, never just the first.
func TestValidate_CompleteErrorList(t *testing.T) {
	survey := entity.NewSurvey("Course Evaluation", "prof")
	require.NoError(t, survey.AddQuestion(
		entity.NewQuestion(entity.TypeRating, "q1", true, entity.QuestionConfig{ScaleMax: 5}),
	))
	require.NoError(t, survey.AddQuestion(
		entity.NewQuestion(entity.TypeYesNo, "q2", true, entity.QuestionConfig{}),
	))
	require.NoError(t, survey.AddQuestion(
		entity.NewQuestion(entity.TypeMultipleChoice, "q3", false, entity.QuestionConfig{Choices: []string{"A", "B"}}),
	))
	require.NoError(t, survey.Transition(entity.StatusActive))

	v := Init(fixedClock())

	// Both required questions unanswered, plus one invalid optional answer
	err := v.Validate(survey, []entity.Answer{answerFor(survey, 2, "C")})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 3)

	assert.Equal(t, KindMissingRequired, verr.Errors[0].Kind)
	assert.Equal(t, survey.Questions[0].QuestionID, verr.Errors[0].QuestionID)
	assert.Equal(t, KindMissingRequired, verr.Errors[1].Kind)
	assert.Equal(t, survey.Questions[1].QuestionID, verr.Errors[1].QuestionID)
	assert.Equal(t, KindInvalidAnswer, verr.Errors[2].Kind)
	assert.Equal(t, survey.Questions[2].QuestionID, verr.Errors[2].QuestionID)
}

func TestValidate_Idempotent(t *testing.T) {
	survey := ratingSurvey(t)
	v := Init(fixedClock())
	answers := []entity.Answer{answerFor(survey, 0, 9)}

	first := v.Validate(survey, answers)
	second := v.Validate(survey, answers)

	var firstErr, secondErr *ValidationError
	require.ErrorAs(t, first, &firstErr)
	require.ErrorAs(t, second, &secondErr)
	assert.Equal(t, firstErr.Errors, secondErr.Errors)
}

func TestBuildResponse_Success(t *testing.T) {
	survey := ratingSurvey(t)
	v := Init(fixedClock())

	response, err := v.BuildResponse(survey, "student-1", []entity.Answer{answerFor(survey, 0, 4)})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, response.ID)
	assert.Equal(t, survey.ID, response.SurveyID)
	assert.Equal(t, testNow, response.SubmittedAt)
	assert.Equal(t, "student-1", response.RespondentID)
	require.Len(t, response.Answers, 1)
	assert.Equal(t, survey.Questions[0].QuestionID, response.Answers[0].QuestionID)
	assert.Equal(t, response.ID, response.Answers[0].ResponseID)
}

func TestBuildResponse_AnonymousDropsRespondent(t *testing.T) {
	survey := ratingSurvey(t)
	survey.Anonymous = true
	v := Init(fixedClock())

	response, err := v.BuildResponse(survey, "student-1", []entity.Answer{answerFor(survey, 0, 4)})

	require.NoError(t, err)
	assert.True(t, response.Anonymous)
	assert.Empty(t, response.RespondentID)
}

func TestBuildResponse_FailureReturnsNoResponse(t *testing.T) {
	survey := ratingSurvey(t)
	v := Init(fixedClock())

	response, err := v.BuildResponse(survey, "student-1", nil)

	assert.Error(t, err)
	assert.Nil(t, response)
}

func TestBuildResponse_OptionalQuestionMayBeSkipped(t *testing.T) {
	survey := entity.NewSurvey("Course Evaluation", "prof")
	require.NoError(t, survey.AddQuestion(
		entity.NewQuestion(entity.TypeRating, "required", true, entity.QuestionConfig{ScaleMax: 5}),
	))
	require.NoError(t, survey.AddQuestion(
		entity.NewQuestion(entity.TypeText, "optional", false, entity.QuestionConfig{}),
	))
	require.NoError(t, survey.Transition(entity.StatusActive))

	v := Init(fixedClock())

	response, err := v.BuildResponse(survey, "student-1", []entity.Answer{answerFor(survey, 0, 3)})

	require.NoError(t, err)
	assert.Len(t, response.Answers, 1)
}
