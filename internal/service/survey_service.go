// Package service orchestrates the survey engine: schema editing, lifecycle
// transitions, response submission and analytics, wired to persistence,
// cache and the event publisher.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/WennovateHQ/teachgage-survey/internal/analytics"
	"github.com/WennovateHQ/teachgage-survey/internal/entity"
	"github.com/WennovateHQ/teachgage-survey/internal/registry"
	"github.com/WennovateHQ/teachgage-survey/internal/validator"
	"github.com/WennovateHQ/teachgage-survey/pkg/retrier"
)

// ErrAlreadyResponded rejects a second submission from the same respondent
// when the survey does not allow multiple responses.
var ErrAlreadyResponded = errors.New("respondent already submitted a response")

type Service struct {
	repo      Repository
	store     ResponseStore
	publisher Publisher
	casher    Casher
	invites   InvitationSource
	validator *validator.Validator

	cashTimeout time.Duration

	// submitLocks serializes the accepting-check plus append per survey so
	// the gate is evaluated atomically with response creation.
	submitLocks sync.Map
}

// Init wires the service. A nil clock falls back to wall-clock time.
func Init(
	repo Repository,
	store ResponseStore,
	publisher Publisher,
	casher Casher,
	invites InvitationSource,
	clock validator.Clock,
	cashTimeout time.Duration,
) *Service {
	if clock == nil {
		clock = validator.ClockFunc(time.Now)
	}

	return &Service{
		repo:        repo,
		store:       store,
		publisher:   publisher,
		casher:      casher,
		invites:     invites,
		validator:   validator.Init(clock),
		cashTimeout: cashTimeout,
	}
}

func (s *Service) surveyLock(surveyID uuid.UUID) *sync.Mutex {
	lock, _ := s.submitLocks.LoadOrStore(surveyID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// cacheSurvey refreshes the cached snapshot of a survey with retries.
func (s *Service) cacheSurvey(survey *entity.Survey) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cashTimeout)
	defer cancel()

	return retrier.Do(3, 5, func() error {
		return s.casher.AddToCash(ctx, survey.ID.String(), survey)
	})
}

// prepareQuestion normalizes an incoming question before it enters a schema:
// the prompt must be present, a missing id gets generated, and the config
// must satisfy its type's handler.
func prepareQuestion(q *entity.Question) error {
	if q.Prompt == "" {
		return errors.New("question prompt cannot be empty")
	}
	if q.QuestionID == uuid.Nil {
		q.QuestionID = uuid.New()
	}
	return registry.ValidateConfig(q)
}

// CreateSurvey persists a new draft survey, caches it and announces it.
// The status field of the payload is ignored: every survey enters the
// system as a draft and reaches any other status only through Transition.
func (s *Service) CreateSurvey(survey *entity.Survey) error {
	if survey == nil {
		return errors.New("survey cannot be nil")
	}
	if survey.ID == uuid.Nil {
		survey.ID = uuid.New()
	}
	survey.Status = entity.StatusDraft
	if err := survey.Validate(); err != nil {
		return err
	}

	// Embedded questions go through the same gate as AddQuestion, so
	// duplicate ids, empty prompts and bad configs cannot slip in through
	// the create payload. AddQuestion also rewrites the order numbers.
	questions := survey.Questions
	survey.Questions = nil
	for i := range questions {
		if err := prepareQuestion(&questions[i]); err != nil {
			return err
		}
		if err := survey.AddQuestion(questions[i]); err != nil {
			return err
		}
	}

	if err := s.repo.Create(survey); err != nil {
		return fmt.Errorf("failed to create survey in repository: %w", err)
	}

	cherr := make(chan error, 1)

	go func() {
		cherr <- s.cacheSurvey(survey)
	}()

	if err := s.publisher.Publish(survey, entity.EventSurveyCreated); err != nil {
		return err
	}

	return <-cherr
}

// GetSurvey loads a survey with its questions in display order. The cached
// snapshot is preferred; any cache failure falls through to the repository.
func (s *Service) GetSurvey(surveyID uuid.UUID) (*entity.Survey, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cashTimeout)
	defer cancel()

	if data, err := s.casher.GetCashFor(ctx, surveyID.String()); err == nil {
		survey := new(entity.Survey)
		if err := sonic.Unmarshal(data, survey); err == nil {
			return survey, nil
		}
	}

	return s.repo.Get(surveyID)
}

// saveAndAnnounce persists a structurally edited survey, refreshes the
// cache and publishes the update event.
func (s *Service) saveAndAnnounce(survey *entity.Survey) error {
	if err := s.repo.Save(survey); err != nil {
		return fmt.Errorf("failed to save survey: %w", err)
	}

	cherr := make(chan error, 1)

	go func() {
		cherr <- s.cacheSurvey(survey)
	}()

	if err := s.publisher.Publish(survey, entity.EventSurveyUpdated); err != nil {
		return err
	}

	return <-cherr
}

// AddQuestion validates the question config against its type and appends it
// to the survey schema.
func (s *Service) AddQuestion(surveyID uuid.UUID, question entity.Question) error {
	if err := prepareQuestion(&question); err != nil {
		return err
	}

	survey, err := s.repo.Get(surveyID)
	if err != nil {
		return fmt.Errorf("failed to retrieve survey: %w", err)
	}

	if err := survey.AddQuestion(question); err != nil {
		return err
	}

	return s.saveAndAnnounce(survey)
}

// RemoveQuestion deletes a question from the schema. Stored answers protect
// the question regardless of survey status; beyond that the entity rejects
// structural edits on active and closed surveys.
func (s *Service) RemoveQuestion(surveyID, questionID uuid.UUID) error {
	survey, err := s.repo.Get(surveyID)
	if err != nil {
		return fmt.Errorf("failed to retrieve survey: %w", err)
	}

	answered, err := s.store.CountAnswers(surveyID, questionID)
	if err != nil {
		return fmt.Errorf("failed to count stored answers: %w", err)
	}
	if answered > 0 {
		return fmt.Errorf("%w: %s", entity.ErrQuestionInUse, questionID)
	}

	if err := survey.RemoveQuestion(questionID); err != nil {
		return err
	}

	return s.saveAndAnnounce(survey)
}

// ReorderQuestions rearranges the schema; ids must be a permutation of the
// current question identifiers.
func (s *Service) ReorderQuestions(surveyID uuid.UUID, ids []uuid.UUID) error {
	survey, err := s.repo.Get(surveyID)
	if err != nil {
		return fmt.Errorf("failed to retrieve survey: %w", err)
	}

	if err := survey.Reorder(ids); err != nil {
		return err
	}

	return s.saveAndAnnounce(survey)
}

// Transition moves the survey through its lifecycle machine and persists
// only the status column on success.
func (s *Service) Transition(surveyID uuid.UUID, target entity.SurveyStatus) error {
	survey, err := s.repo.Get(surveyID)
	if err != nil {
		return fmt.Errorf("failed to retrieve survey: %w", err)
	}

	if err := survey.Transition(target); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(surveyID, survey.Status); err != nil {
		return fmt.Errorf("failed to update survey status: %w", err)
	}

	cherr := make(chan error, 1)

	go func() {
		cherr <- s.cacheSurvey(survey)
	}()

	if err := s.publisher.Publish(survey, entity.EventSurveyUpdated); err != nil {
		return err
	}

	return <-cherr
}

// SubmitResponse validates the answers against the current survey snapshot
// and appends the response. The gate and the append run under the survey's
// submit lock, so two racing submissions cannot both slip past a closing
// status or window.
func (s *Service) SubmitResponse(surveyID uuid.UUID, respondentID string, answers []entity.Answer) (*entity.Response, error) {
	lock := s.surveyLock(surveyID)
	lock.Lock()
	defer lock.Unlock()

	survey, err := s.repo.Get(surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve survey: %w", err)
	}

	if !survey.AllowMultipleResponses && !survey.Anonymous && respondentID != "" {
		existing, err := s.store.ListBySurvey(surveyID)
		if err != nil {
			return nil, fmt.Errorf("failed to list responses: %w", err)
		}
		for i := range existing {
			if existing[i].RespondentID == respondentID {
				return nil, ErrAlreadyResponded
			}
		}
	}

	response, err := s.validator.BuildResponse(survey, respondentID, answers)
	if err != nil {
		return nil, err
	}

	if err := s.store.Append(response); err != nil {
		return nil, fmt.Errorf("failed to append response: %w", err)
	}

	if err := s.publisher.Publish(response, entity.EventResponseAccepted); err != nil {
		return nil, err
	}

	return response, nil
}

// Summarize assembles the analytics view over all stored responses.
func (s *Service) Summarize(surveyID uuid.UUID) (*analytics.SurveySummary, error) {
	survey, err := s.repo.Get(surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve survey: %w", err)
	}

	responses, err := s.store.ListBySurvey(surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	invitations := 0
	if s.invites != nil {
		invitations, err = s.invites.InvitationCount(surveyID)
		if err != nil {
			return nil, fmt.Errorf("failed to get invitation count: %w", err)
		}
	}

	return analytics.Summarize(survey, responses, invitations)
}

// DeleteSurvey removes the survey, cascades to its responses and drops the
// cached snapshot.
func (s *Service) DeleteSurvey(surveyID uuid.UUID) error {
	if err := s.store.DeleteBySurvey(surveyID); err != nil {
		return fmt.Errorf("failed to delete responses: %w", err)
	}

	if err := s.repo.Delete(surveyID); err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cashTimeout)
	defer cancel()

	if err := s.casher.RemoveFromCash(ctx, surveyID.String()); err != nil {
		return err
	}

	return s.publisher.Publish(surveyID.String(), entity.EventSurveyDeleted)
}
