package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/WennovateHQ/teachgage-survey/internal/entity"
)

type (
	// Repository persists surveys and their questions.
	Repository interface {
		Create(*entity.Survey) error
		Get(uuid.UUID) (*entity.Survey, error)
		Save(*entity.Survey) error
		UpdateStatus(uuid.UUID, entity.SurveyStatus) error
		Delete(uuid.UUID) error
	}

	// ResponseStore is the append-only collection of completed responses.
	ResponseStore interface {
		Append(*entity.Response) error
		ListBySurvey(uuid.UUID) ([]entity.Response, error)
		CountAnswers(surveyID, questionID uuid.UUID) (int64, error)
		DeleteBySurvey(uuid.UUID) error
	}

	Publisher interface {
		Publish(any, string) error
	}

	Casher interface {
		AddToCash(ctx context.Context, key string, payload any) error // payload must to be pointer
		GetCashFor(ctx context.Context, key string) ([]byte, error)
		RemoveFromCash(ctx context.Context, key string) error
	}

	// InvitationSource reports how many respondents were invited to a
	// survey. It backs the completion-rate figure and nothing else.
	InvitationSource interface {
		InvitationCount(surveyID uuid.UUID) (int, error)
	}
)
