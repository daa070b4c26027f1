// Package listener dispatches inbound command events to the survey service.
package listener

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/WennovateHQ/teachgage-survey/internal/entity"
	"github.com/WennovateHQ/teachgage-survey/internal/service"
	"github.com/WennovateHQ/teachgage-survey/pkg/config"
	"github.com/WennovateHQ/teachgage-survey/pkg/logger"
)

type (
	// Command payloads. survey.create carries a full entity.Survey instead.
	AddQuestionRequest struct {
		SurveyID uuid.UUID             `json:"survey_id"`
		Type     entity.QuestionType   `json:"type"`
		Prompt   string                `json:"prompt"`
		Required bool                  `json:"required"`
		Config   entity.QuestionConfig `json:"config"`
	}

	RemoveQuestionRequest struct {
		SurveyID   uuid.UUID `json:"survey_id"`
		QuestionID uuid.UUID `json:"question_id"`
	}

	ReorderRequest struct {
		SurveyID    uuid.UUID   `json:"survey_id"`
		QuestionIDs []uuid.UUID `json:"question_ids"`
	}

	TransitionRequest struct {
		SurveyID uuid.UUID           `json:"survey_id"`
		Target   entity.SurveyStatus `json:"target"`
	}

	DeleteSurveyRequest struct {
		SurveyID uuid.UUID `json:"survey_id"`
	}

	SubmitResponseRequest struct {
		SurveyID     uuid.UUID       `json:"survey_id"`
		RespondentID string          `json:"respondent_id"`
		Answers      []entity.Answer `json:"answers"`
	}

	Listener struct {
		inputChan chan entity.Event
		logger    *logger.Logger
		service   *service.Service
		cfg       *config.Config
	}
)

func Init(
	inputChan chan entity.Event,
	logger *logger.Logger,
	cfg *config.Config,
	service *service.Service,
) *Listener {
	return &Listener{
		inputChan: inputChan,
		service:   service,
		logger:    logger,
		cfg:       cfg,
	}
}

// decode unmarshals an event payload, logging failures uniformly.
func decode[T any](list *Listener, event entity.Event, out *T) bool {
	if err := sonic.Unmarshal(event.Payload, out); err != nil {
		list.logger.Error("error unmarshal event payload",
			zap.String("event_type", event.Type),
			zap.String("event_id", event.ID),
			zap.Error(err))
		return false
	}
	return true
}

// Listen consumes command events until the context is cancelled. A failed
// command is logged and skipped; the loop never stops on handler errors.
func (list *Listener) Listen(ctx context.Context) {
	for {
		select {
		case event := <-list.inputChan:
			list.handle(event)

		case <-ctx.Done():
			list.logger.Info("stopping listeners...")
			return
		}
	}
}

func (list *Listener) handle(event entity.Event) {
	switch event.Type {
	case list.cfg.Reqs.CreateSurveyRequestType:
		survey := new(entity.Survey)
		if !decode(list, event, survey) {
			return
		}
		if err := list.service.CreateSurvey(survey); err != nil {
			list.logger.Error("error create survey", zap.Error(err))
		}

	case list.cfg.Reqs.AddQuestionRequestType:
		req := new(AddQuestionRequest)
		if !decode(list, event, req) {
			return
		}
		question := entity.NewQuestion(req.Type, req.Prompt, req.Required, req.Config)
		if err := list.service.AddQuestion(req.SurveyID, question); err != nil {
			list.logger.Error("error add question",
				zap.String("survey_id", req.SurveyID.String()),
				zap.Error(err))
		}

	case list.cfg.Reqs.RemoveQuestionRequestType:
		req := new(RemoveQuestionRequest)
		if !decode(list, event, req) {
			return
		}
		if err := list.service.RemoveQuestion(req.SurveyID, req.QuestionID); err != nil {
			list.logger.Error("error remove question",
				zap.String("survey_id", req.SurveyID.String()),
				zap.String("question_id", req.QuestionID.String()),
				zap.Error(err))
		}

	case list.cfg.Reqs.ReorderRequestType:
		req := new(ReorderRequest)
		if !decode(list, event, req) {
			return
		}
		if err := list.service.ReorderQuestions(req.SurveyID, req.QuestionIDs); err != nil {
			list.logger.Error("error reorder questions",
				zap.String("survey_id", req.SurveyID.String()),
				zap.Error(err))
		}

	case list.cfg.Reqs.TransitionRequestType:
		req := new(TransitionRequest)
		if !decode(list, event, req) {
			return
		}
		if err := list.service.Transition(req.SurveyID, req.Target); err != nil {
			list.logger.Error("error transition survey",
				zap.String("survey_id", req.SurveyID.String()),
				zap.String("target", string(req.Target)),
				zap.Error(err))
		}

	case list.cfg.Reqs.DeleteSurveyRequestType:
		req := new(DeleteSurveyRequest)
		if !decode(list, event, req) {
			return
		}
		if err := list.service.DeleteSurvey(req.SurveyID); err != nil {
			list.logger.Error("error delete survey",
				zap.String("survey_id", req.SurveyID.String()),
				zap.Error(err))
		}

	case list.cfg.Reqs.SubmitResponseRequestType:
		req := new(SubmitResponseRequest)
		if !decode(list, event, req) {
			return
		}
		if _, err := list.service.SubmitResponse(req.SurveyID, req.RespondentID, req.Answers); err != nil {
			list.logger.Error("error submit response",
				zap.String("survey_id", req.SurveyID.String()),
				zap.Error(err))
		}

	default:
		list.logger.Warn("unknown event type",
			zap.String("event_type", event.Type),
			zap.String("event_id", event.ID))
	}
}
