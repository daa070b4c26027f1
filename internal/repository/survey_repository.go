// Package repository provides data persistence functionality using GORM
package repository

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/WennovateHQ/teachgage-survey/internal/entity"
	"github.com/WennovateHQ/teachgage-survey/pkg/logger"
)

// Repository handles survey persistence using GORM
type Repository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// Init creates and returns a new Repository instance
func Init(db *gorm.DB, logger *logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the survey tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Survey{},
		&entity.Question{},
		&entity.Response{},
		&entity.Answer{},
	)
}

// Create persists a new survey together with its questions
func (repo *Repository) Create(survey *entity.Survey) error {
	res := repo.db.Create(survey)

	if err := res.Error; err != nil {
		repo.logger.Error("error create survey",
			zap.String("survey_id", survey.ID.String()),
			zap.Error(err))
		return err
	}

	return nil
}

// Get retrieves a survey by its ID with questions in display order
func (repo *Repository) Get(ID uuid.UUID) (*entity.Survey, error) {
	var survey entity.Survey

	res := repo.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_number ASC")
	}).Where("id = ?", ID).First(&survey)
	if err := res.Error; err != nil {
		repo.logger.Error("error get survey",
			zap.String("survey_id", ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return &survey, nil
}

// Save writes the survey and its questions back in one transaction. Schema
// edits replace the question set, so removed questions are deleted here.
func (repo *Repository) Save(survey *entity.Survey) error {
	err := repo.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("survey_id = ?", survey.ID).Delete(&entity.Question{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(survey).Error
	})
	if err != nil {
		repo.logger.Error("error save survey",
			zap.String("survey_id", survey.ID.String()),
			zap.Error(err))
		return err
	}

	return nil
}

// UpdateStatus rewrites only the status column
func (repo *Repository) UpdateStatus(ID uuid.UUID, status entity.SurveyStatus) error {
	res := repo.db.Model(&entity.Survey{}).Where("id = ?", ID).Update("status", status)

	if err := res.Error; err != nil {
		repo.logger.Error("error update survey status",
			zap.String("survey_id", ID.String()),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// Delete removes a survey and, through the cascade constraint, its questions
func (repo *Repository) Delete(ID uuid.UUID) error {
	res := repo.db.Select("Questions").Delete(&entity.Survey{ID: ID})

	if err := res.Error; err != nil {
		repo.logger.Error("error delete survey",
			zap.String("survey_id", ID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}
