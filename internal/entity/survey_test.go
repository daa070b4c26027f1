package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftSurveyWithQuestions(t *testing.T, count int) *Survey {
	t.Helper()

	survey := NewSurvey("Course Evaluation", "prof")
	for i := 0; i < count; i++ {
		q := NewQuestion(TypeRating, "rate it", true, QuestionConfig{ScaleMax: 5})
		require.NoError(t, survey.AddQuestion(q))
	}
	return survey
}

func TestNewSurvey_StartsInDraft(t *testing.T) {
	survey := NewSurvey("Course Evaluation", "prof")

	assert.Equal(t, StatusDraft, survey.Status)
	assert.NotEqual(t, uuid.Nil, survey.ID)
	assert.Empty(t, survey.Questions)
}

func TestSurvey_Validate(t *testing.T) {
	survey := NewSurvey("Course Evaluation", "prof")
	assert.NoError(t, survey.Validate())

	survey.Title = ""
	assert.Error(t, survey.Validate())

	survey.Title = "t"
	start := time.Now()
	end := start.Add(-time.Hour)
	survey.StartDate = &start
	survey.EndDate = &end
	assert.Error(t, survey.Validate(), "end date before start date")
}

func TestSurvey_AddQuestion(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 2)

	assert.Equal(t, uint(1), survey.Questions[0].OrderNumber)
	assert.Equal(t, uint(2), survey.Questions[1].OrderNumber)
	assert.Equal(t, survey.ID, survey.Questions[0].SurveyID)
}

func TestSurvey_AddQuestion_DuplicateID(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 1)

	dup := NewQuestion(TypeText, "another", false, QuestionConfig{})
	dup.QuestionID = survey.Questions[0].QuestionID

	err := survey.AddQuestion(dup)

	assert.ErrorIs(t, err, ErrDuplicateQuestionID)
	assert.Len(t, survey.Questions, 1)
}

func TestSurvey_AddQuestion_Locked(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 1)
	require.NoError(t, survey.Transition(StatusActive))

	q := NewQuestion(TypeText, "late addition", false, QuestionConfig{})

	assert.ErrorIs(t, survey.AddQuestion(q), ErrSurveyLocked)

	require.NoError(t, survey.Transition(StatusClosed))
	assert.ErrorIs(t, survey.AddQuestion(q), ErrSurveyLocked)
}

func TestSurvey_AddQuestion_AllowedWhilePaused(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 1)
	require.NoError(t, survey.Transition(StatusActive))
	require.NoError(t, survey.Transition(StatusPaused))

	q := NewQuestion(TypeText, "added during pause", false, QuestionConfig{})

	assert.NoError(t, survey.AddQuestion(q))
	assert.Len(t, survey.Questions, 2)
}

func TestSurvey_RemoveQuestion(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 3)
	removed := survey.Questions[1].QuestionID

	require.NoError(t, survey.RemoveQuestion(removed))

	assert.Len(t, survey.Questions, 2)
	assert.Nil(t, survey.QuestionByID(removed))
	assert.Equal(t, uint(1), survey.Questions[0].OrderNumber)
	assert.Equal(t, uint(2), survey.Questions[1].OrderNumber, "remaining questions are renumbered")
}

func TestSurvey_RemoveQuestion_NotFound(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 1)

	err := survey.RemoveQuestion(uuid.New())

	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestSurvey_RemoveQuestion_Locked(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 2)
	require.NoError(t, survey.Transition(StatusActive))

	err := survey.RemoveQuestion(survey.Questions[0].QuestionID)

	assert.ErrorIs(t, err, ErrSurveyLocked)
	assert.Len(t, survey.Questions, 2)

	require.NoError(t, survey.Transition(StatusClosed))
	assert.ErrorIs(t, survey.RemoveQuestion(survey.Questions[0].QuestionID), ErrSurveyLocked)
}

func TestSurvey_RemoveQuestion_AllowedWhilePaused(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 2)
	require.NoError(t, survey.Transition(StatusActive))
	require.NoError(t, survey.Transition(StatusPaused))

	require.NoError(t, survey.RemoveQuestion(survey.Questions[0].QuestionID))
	assert.Len(t, survey.Questions, 1)
}

func TestSurvey_Reorder(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 3)
	first := survey.Questions[0].QuestionID
	second := survey.Questions[1].QuestionID
	third := survey.Questions[2].QuestionID

	require.NoError(t, survey.Reorder([]uuid.UUID{third, first, second}))

	assert.Equal(t, third, survey.Questions[0].QuestionID)
	assert.Equal(t, first, survey.Questions[1].QuestionID)
	assert.Equal(t, second, survey.Questions[2].QuestionID)
	assert.Equal(t, uint(1), survey.Questions[0].OrderNumber)
	assert.Equal(t, uint(3), survey.Questions[2].OrderNumber)
}

func TestSurvey_Reorder_InvalidPermutation(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 2)
	first := survey.Questions[0].QuestionID
	second := survey.Questions[1].QuestionID

	assert.ErrorIs(t, survey.Reorder([]uuid.UUID{first}), ErrInvalidPermutation, "too short")
	assert.ErrorIs(t, survey.Reorder([]uuid.UUID{first, uuid.New()}), ErrInvalidPermutation, "unknown id")
	assert.ErrorIs(t, survey.Reorder([]uuid.UUID{first, first}), ErrInvalidPermutation, "repeated id")

	// A failed reorder leaves the original order intact
	assert.Equal(t, first, survey.Questions[0].QuestionID)
	assert.Equal(t, second, survey.Questions[1].QuestionID)
}

func TestSurvey_Reorder_Locked(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 2)
	first := survey.Questions[0].QuestionID
	second := survey.Questions[1].QuestionID
	require.NoError(t, survey.Transition(StatusActive))

	err := survey.Reorder([]uuid.UUID{second, first})

	assert.ErrorIs(t, err, ErrSurveyLocked)
	assert.Equal(t, first, survey.Questions[0].QuestionID)
}

func TestSurvey_Transition_HappyPath(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 1)

	require.NoError(t, survey.Transition(StatusActive))
	assert.Equal(t, StatusActive, survey.Status)

	require.NoError(t, survey.Transition(StatusPaused))
	assert.Equal(t, StatusPaused, survey.Status)

	require.NoError(t, survey.Transition(StatusActive))
	assert.Equal(t, StatusActive, survey.Status)

	require.NoError(t, survey.Transition(StatusClosed))
	assert.Equal(t, StatusClosed, survey.Status)
}

func TestSurvey_Transition_ActivationGuards(t *testing.T) {
	empty := NewSurvey("Course Evaluation", "prof")
	err := empty.Transition(StatusActive)
	assert.ErrorIs(t, err, ErrCannotActivateEmptySurvey)
	assert.Equal(t, StatusDraft, empty.Status, "failed transition leaves state intact")

	untitled := draftSurveyWithQuestions(t, 1)
	untitled.Title = ""
	assert.ErrorIs(t, untitled.Transition(StatusActive), ErrCannotActivateUntitledSurvey)
}

func TestSurvey_Transition_ClosedIsTerminal(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 1)
	require.NoError(t, survey.Transition(StatusClosed))

	for _, target := range []SurveyStatus{StatusDraft, StatusActive, StatusPaused, StatusClosed} {
		assert.ErrorIs(t, survey.Transition(target), ErrSurveyAlreadyClosed)
	}
	assert.Equal(t, StatusClosed, survey.Status)
}

func TestSurvey_Transition_NoSkippedEdges(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 1)

	assert.ErrorIs(t, survey.Transition(StatusPaused), ErrInvalidTransition, "draft cannot pause")

	require.NoError(t, survey.Transition(StatusActive))
	assert.ErrorIs(t, survey.Transition(StatusDraft), ErrInvalidTransition, "active cannot return to draft")

	require.NoError(t, survey.Transition(StatusPaused))
	assert.ErrorIs(t, survey.Transition(StatusDraft), ErrInvalidTransition, "paused cannot return to draft")
}

func TestSurvey_DraftCanBeAbandoned(t *testing.T) {
	survey := NewSurvey("Course Evaluation", "prof")

	require.NoError(t, survey.Transition(StatusClosed))
	assert.Equal(t, StatusClosed, survey.Status)
}

func TestSurvey_ToJson(t *testing.T) {
	survey := draftSurveyWithQuestions(t, 2)

	data, err := survey.ToJson()

	require.NoError(t, err)
	assert.Contains(t, string(data), survey.ID.String())
	assert.Contains(t, string(data), `"status":"draft"`)
	assert.Contains(t, string(data), `"questions"`)
}
