// Package casher provides Redis-based caching for current survey snapshots
package casher

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/WennovateHQ/teachgage-survey/pkg/logger"
)

// SURVEY_KEY_TEMPLATE namespaces all survey keys under "survey:"
const SURVEY_KEY_TEMPLATE = "survey:%s"

// Casher handles caching operations using Redis as the backend
type Casher struct {
	client *redis.Client
	logger *logger.Logger
}

// Init creates a new Casher instance with the provided Redis client and logger
func Init(client *redis.Client, logger *logger.Logger) *Casher {
	return &Casher{
		client: client,
		logger: logger,
	}
}

func (c *Casher) Close() error {
	return c.client.Close()
}

func (c *Casher) IsHealthy() bool {
	return c.client.Ping(context.Background()).Err() == nil
}

// AddToCash stores the JSON snapshot of a payload under the survey key with
// no expiration; entries live until explicit removal.
func (c *Casher) AddToCash(ctx context.Context, key string, payload any) error {
	body, err := sonic.Marshal(payload)
	if err != nil {
		c.logger.Error("error encode payload for cash",
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}

	res := c.client.Set(ctx, fmt.Sprintf(SURVEY_KEY_TEMPLATE, key), body, 0)

	if err := res.Err(); err != nil {
		c.logger.Error("failed to cash payload with",
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// RemoveFromCash drops the cached snapshot for the key.
func (c *Casher) RemoveFromCash(ctx context.Context, key string) error {
	res := c.client.Del(ctx, fmt.Sprintf(SURVEY_KEY_TEMPLATE, key))

	if err := res.Err(); err != nil {
		c.logger.Error("error delete from redis",
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	return nil
}

// GetCashFor retrieves the cached snapshot for the key, or an error when the
// key is absent.
func (c *Casher) GetCashFor(ctx context.Context, key string) ([]byte, error) {
	res := c.client.Get(ctx, fmt.Sprintf(SURVEY_KEY_TEMPLATE, key))
	if err := res.Err(); err != nil {
		c.logger.Error("error get cash",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, err
	}

	data, err := res.Bytes()
	if err != nil {
		c.logger.Error("error get cashed bytes",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, err
	}

	return data, nil
}
