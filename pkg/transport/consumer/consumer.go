// Package consumer provides RabbitMQ consumer functionality for the inbound
// command queue
package consumer

import (
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/WennovateHQ/teachgage-survey/internal/entity"
	"github.com/WennovateHQ/teachgage-survey/pkg/config"
	"github.com/WennovateHQ/teachgage-survey/pkg/logger"
)

const (
	// EXCHANGE_TYPE routes messages to queues on exact routing-key match
	EXCHANGE_TYPE = "direct"

	DEFAULT_RECONNECT_DELAY = 5 * time.Second
)

// Consumer reads command events from RabbitMQ and hands them to the
// listener through a channel.
type Consumer struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	logger       *logger.Logger
	cfg          *config.Config
	exchanges    map[string]bool
	mu           sync.RWMutex
	isConnected  bool
	reconnecting bool
}

// Init creates and initializes a new Consumer instance
func Init(cfg *config.Config, logger *logger.Logger, conn *amqp.Connection) (*Consumer, error) {
	if cfg == nil || logger == nil || conn == nil {
		return nil, fmt.Errorf("invalid parameters: cfg, logger, and conn cannot be nil")
	}

	consumer := &Consumer{
		conn:        conn,
		logger:      logger,
		cfg:         cfg,
		exchanges:   make(map[string]bool),
		isConnected: true,
	}

	if err := consumer.initializeChannel(); err != nil {
		return nil, fmt.Errorf("failed to initialize channel: %w", err)
	}

	if err := consumer.declareExchange(cfg.Exchange.Request); err != nil {
		consumer.cleanup()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return consumer, nil
}

func (c *Consumer) initializeChannel() error {
	channel, err := c.conn.Channel()
	if err != nil {
		c.logger.Error("failed to open channel", zap.Error(err))
		return err
	}

	c.channel = channel
	return nil
}

func (c *Consumer) declareExchange(exchangeName string) error {
	if err := c.channel.ExchangeDeclare(
		exchangeName,
		EXCHANGE_TYPE,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		c.logger.Error("failed to declare exchange",
			zap.String("exchange", exchangeName),
			zap.Error(err))
		return err
	}

	c.mu.Lock()
	c.exchanges[exchangeName] = true
	c.mu.Unlock()

	return nil
}

// Subscribe declares the queue and binds it to an exchange with the given
// routing key. One subscription per command type.
func (c *Consumer) Subscribe(exchange, routingKey, queueName string) error {
	c.mu.RLock()
	connected := c.isConnected
	c.mu.RUnlock()

	if !connected {
		return fmt.Errorf("consumer is not connected")
	}

	if _, err := c.channel.QueueDeclare(
		queueName, // name of the queue
		true,      // durable: queue survives broker restart
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		c.logger.Error("failed to declare queue",
			zap.String("queue", queueName),
			zap.Error(err))
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	if err := c.channel.QueueBind(
		queueName,
		routingKey,
		exchange,
		false, // noWait
		nil,   // args
	); err != nil {
		c.logger.Error("failed to bind queue to exchange",
			zap.String("queue", queueName),
			zap.String("exchange", exchange),
			zap.String("routing_key", routingKey),
			zap.Error(err))
		return fmt.Errorf("failed to bind queue %s to exchange %s: %w", queueName, exchange, err)
	}

	c.mu.Lock()
	c.exchanges[exchange] = true
	c.mu.Unlock()

	return nil
}

// Close gracefully closes the consumer connection and channel
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isConnected = false

	var errs []error

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error("error closing channel", zap.Error(err))
			errs = append(errs, fmt.Errorf("channel close error: %w", err))
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("error closing connection", zap.Error(err))
			errs = append(errs, fmt.Errorf("connection close error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}

// IsHealthy checks if the consumer connection is healthy
func (c *Consumer) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.isConnected && c.conn != nil && !c.conn.IsClosed()
}

// ConsumeMessages consumes command events in an infinite loop with
// automatic reconnection, decoding each message into an Event and sending
// it to outputChan.
func (c *Consumer) ConsumeMessages(outputChan chan entity.Event) {
	if outputChan == nil {
		c.logger.Error("output channel cannot be nil")
		return
	}

	for {
		if !c.IsHealthy() {
			c.logger.Warn("connection is unhealthy, attempting to reconnect...")
			if err := c.handleReconnection(); err != nil {
				c.logger.Error("failed to reconnect", zap.Error(err))
				time.Sleep(DEFAULT_RECONNECT_DELAY)
				continue
			}
		}

		if err := c.startConsuming(outputChan); err != nil {
			c.logger.Error("consuming stopped with error", zap.Error(err))
			time.Sleep(DEFAULT_RECONNECT_DELAY)
		}
	}
}

func (c *Consumer) handleReconnection() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reconnecting {
		return fmt.Errorf("reconnection already in progress")
	}

	c.reconnecting = true
	defer func() { c.reconnecting = false }()

	return c.reconnect()
}

func (c *Consumer) startConsuming(outputChan chan entity.Event) error {
	msgs, err := c.channel.Consume(
		c.cfg.Queue.Request, // queue to consume from
		"",                  // consumer identifier
		true,                // auto-acknowledge messages
		false,               // exclusive consumer
		false,               // no-local flag
		false,               // no-wait flag
		nil,                 // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("successfully connected to RabbitMQ, waiting for messages...")

	for msg := range msgs {
		if err := c.processMessage(msg, outputChan); err != nil {
			c.logger.Error("failed to process message", zap.Error(err))
			// Other messages keep flowing even when one fails
		}
	}

	return fmt.Errorf("message channel closed")
}

func (c *Consumer) processMessage(msg amqp.Delivery, outputChan chan entity.Event) error {
	event := new(entity.Event)
	if err := sonic.Unmarshal(msg.Body, event); err != nil {
		c.logger.Error("failed to unmarshal event",
			zap.Error(err),
			zap.ByteString("body", msg.Body))
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	c.logger.Debug("received new event",
		zap.String("event_id", event.ID),
		zap.String("routing_key", event.Type),
		zap.Time("timestamp", event.Timestamp))

	// Non-blocking send to output channel
	select {
	case outputChan <- *event:
		return nil
	default:
		c.logger.Warn("output channel is full, dropping message",
			zap.String("event_id", event.ID))
		return fmt.Errorf("output channel is full")
	}
}

// reconnect re-establishes the connection, recreates the channel and
// redeclares all tracked exchanges. The caller already holds the write
// lock, so nothing here may lock again.
func (c *Consumer) reconnect() error {
	c.cleanup()

	conn, err := amqp.Dial(c.cfg.Urls.Rabbitmq)
	if err != nil {
		return fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	c.conn = conn

	if err := c.initializeChannel(); err != nil {
		c.conn.Close()
		return err
	}

	for exchange := range c.exchanges {
		if err := c.channel.ExchangeDeclare(
			exchange,
			EXCHANGE_TYPE,
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,   // arguments
		); err != nil {
			c.cleanup()
			return fmt.Errorf("failed to redeclare exchange %s: %w", exchange, err)
		}
	}

	c.isConnected = true
	c.logger.Info("successfully reconnected to RabbitMQ")
	return nil
}

func (c *Consumer) cleanup() {
	c.isConnected = false

	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
