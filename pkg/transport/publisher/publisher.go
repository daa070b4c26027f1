package publisher

import (
	"time"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/WennovateHQ/teachgage-survey/internal/entity"
	"github.com/WennovateHQ/teachgage-survey/pkg/config"
	"github.com/WennovateHQ/teachgage-survey/pkg/logger"
)

// Publisher sends outcome events (survey created/updated/deleted, response
// accepted) to the output exchange.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
	cfg     *config.Config
}

func Init(cfg *config.Config, logger *logger.Logger, conn *amqp.Connection) (*Publisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		logger.Error("error opening channel", zap.Error(err))
		conn.Close()
		return nil, err
	}
	return &Publisher{
		conn:    conn,
		channel: channel,
		logger:  logger,
		cfg:     cfg,
	}, nil
}

func (p *Publisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.logger.Error("error closing channel", zap.Error(err))
	}
	return p.conn.Close()
}

func (p *Publisher) IsHealthy() bool {
	return p.conn != nil && !p.conn.IsClosed()
}

func (p *Publisher) Publish(payload any, routingKey string) error {
	payloadJson, err := sonic.Marshal(payload)
	if err != nil {
		p.logger.Error("error encode payload for publish", zap.Error(err))
		return err
	}

	event := entity.NewEvent(routingKey, payloadJson)

	eventJson, err := sonic.Marshal(event)
	if err != nil {
		p.logger.Error("error encode event for publish",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return err
	}

	err = p.channel.Publish(
		p.cfg.Exchange.Output, // exchange
		routingKey,            // routing key
		false,                 // mandatory
		false,                 // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        eventJson,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		p.logger.Error("error publishing event")
		return err
	}

	p.logger.Info("successfully published event",
		zap.String("event_id", event.ID),
		zap.String("routing_key", routingKey),
	)

	return nil
}
