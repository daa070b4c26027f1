// Package invites reads invitation counts maintained by the surrounding
// platform. The engine only consumes the number; who was invited and how is
// the platform's concern.
package invites

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/WennovateHQ/teachgage-survey/pkg/logger"
)

// INVITES_KEY_TEMPLATE namespaces invitation counters under "invites:"
const INVITES_KEY_TEMPLATE = "invites:%s"

type Source struct {
	client *redis.Client
	logger *logger.Logger
}

func Init(client *redis.Client, logger *logger.Logger) *Source {
	return &Source{
		client: client,
		logger: logger,
	}
}

// InvitationCount returns the number of respondents invited to the survey.
// A missing counter means nobody was invited yet and reads as zero.
func (s *Source) InvitationCount(surveyID uuid.UUID) (int, error) {
	res := s.client.Get(context.Background(), fmt.Sprintf(INVITES_KEY_TEMPLATE, surveyID))
	if err := res.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		s.logger.Error("error get invitation count",
			zap.String("survey_id", surveyID.String()),
			zap.Error(err))
		return 0, err
	}

	count, err := res.Int()
	if err != nil {
		s.logger.Error("error parse invitation count",
			zap.String("survey_id", surveyID.String()),
			zap.Error(err))
		return 0, err
	}

	return count, nil
}
