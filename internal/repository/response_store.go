package repository

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/WennovateHQ/teachgage-survey/internal/entity"
	"github.com/WennovateHQ/teachgage-survey/pkg/logger"
)

// ResponseStore is the append-only collection of completed responses.
// Responses are never edited in place; corrections arrive as new responses.
type ResponseStore struct {
	db     *gorm.DB
	logger *logger.Logger
}

// InitResponseStore creates and returns a new ResponseStore instance
func InitResponseStore(db *gorm.DB, logger *logger.Logger) *ResponseStore {
	return &ResponseStore{
		db:     db,
		logger: logger,
	}
}

// Append stores a validated response together with its answers
func (store *ResponseStore) Append(response *entity.Response) error {
	res := store.db.Create(response)

	if err := res.Error; err != nil {
		store.logger.Error("error append response",
			zap.String("response_id", response.ID.String()),
			zap.String("survey_id", response.SurveyID.String()),
			zap.Error(err))
		return err
	}

	return nil
}

// ListBySurvey retrieves all responses for a survey, answers included.
// Order is unspecified; aggregation does not depend on it.
func (store *ResponseStore) ListBySurvey(surveyID uuid.UUID) ([]entity.Response, error) {
	var responses []entity.Response

	res := store.db.Preload("Answers").Where("survey_id = ?", surveyID).Find(&responses)
	if err := res.Error; err != nil {
		store.logger.Error("error list responses",
			zap.String("survey_id", surveyID.String()),
			zap.Error(err))
		return nil, err
	}

	return responses, nil
}

// CountAnswers reports how many stored answers reference the question.
// Schema edits use this to keep historical response integrity.
func (store *ResponseStore) CountAnswers(surveyID, questionID uuid.UUID) (int64, error) {
	var count int64

	res := store.db.Model(&entity.Answer{}).
		Joins("JOIN responses ON responses.id = answers.response_id").
		Where("responses.survey_id = ? AND answers.question_id = ?", surveyID, questionID).
		Count(&count)
	if err := res.Error; err != nil {
		store.logger.Error("error count answers",
			zap.String("survey_id", surveyID.String()),
			zap.String("question_id", questionID.String()),
			zap.Error(err))
		return 0, err
	}

	return count, nil
}

// DeleteBySurvey removes every response of a survey. Used only by survey
// deletion, which must invalidate all its responses.
func (store *ResponseStore) DeleteBySurvey(surveyID uuid.UUID) error {
	err := store.db.Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&entity.Response{}).Select("id").Where("survey_id = ?", surveyID)
		if err := tx.Where("response_id IN (?)", sub).Delete(&entity.Answer{}).Error; err != nil {
			return err
		}
		return tx.Where("survey_id = ?", surveyID).Delete(&entity.Response{}).Error
	})
	if err != nil {
		store.logger.Error("error delete responses",
			zap.String("survey_id", surveyID.String()),
			zap.Error(err))
		return err
	}

	return nil
}
