package messagequeue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Handler attempts per delivery before it is nacked back onto the queue.
const rabbitMaxAttempts = 5

// RabbitMQService implements the MessageQueue interface using RabbitMQ.
// Each topic maps to a durable queue of the same name on the default exchange.
// A dropped connection is re-dialed on the next Publish or Consume.
type RabbitMQService struct {
	url      string
	conn     *amqp.Connection
	channel  *amqp.Channel // publishing channel, nil after a publish failure
	mu       sync.Mutex
	declared map[string]bool
	closed   bool
	backoff  Backoff
	logger   *zap.Logger
}

// NewRabbitMQServiceConfig contains options for creating a new RabbitMQService.
type NewRabbitMQServiceConfig struct {
	URL string
}

// NewRabbitMQService creates a new instance of RabbitMQService.
func NewRabbitMQService(cfg NewRabbitMQServiceConfig, logger *zap.Logger) (*RabbitMQService, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	logger.Info("Successfully connected to RabbitMQ and opened a channel")
	return &RabbitMQService{
		url:      cfg.URL,
		conn:     conn,
		channel:  ch,
		declared: make(map[string]bool),
		backoff:  DefaultBackoff,
		logger:   logger,
	}, nil
}

// connection returns a live connection, re-dialing a closed one. Callers hold s.mu.
func (s *RabbitMQService) connection() (*amqp.Connection, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.conn != nil && !s.conn.IsClosed() {
		return s.conn, nil
	}
	s.logger.Warn("RabbitMQ connection closed, reconnecting")
	conn, err := amqp.Dial(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
	}
	s.conn = conn
	s.channel = nil
	s.declared = make(map[string]bool)
	s.logger.Info("Reconnected to RabbitMQ")
	return conn, nil
}

// publishChannel returns the publishing channel, reopening it if needed. Callers hold s.mu.
func (s *RabbitMQService) publishChannel() (*amqp.Channel, error) {
	conn, err := s.connection()
	if err != nil {
		return nil, err
	}
	if s.channel == nil {
		ch, err := conn.Channel()
		if err != nil {
			return nil, fmt.Errorf("failed to open a channel: %w", err)
		}
		s.channel = ch
		s.declared = make(map[string]bool)
	}
	return s.channel, nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

// Publish sends a persistent message to the topic's queue.
func (s *RabbitMQService) Publish(ctx context.Context, topic, key string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.publishChannel()
	if err != nil {
		return err
	}
	if !s.declared[topic] {
		if _, err := declareQueue(ch, topic); err != nil {
			s.channel = nil
			return fmt.Errorf("failed to declare queue %s: %w", topic, err)
		}
		s.declared[topic] = true
	}

	err = ch.Publish(
		"",    // exchange
		topic, // routing key (queue name)
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    key,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		s.channel = nil
		return fmt.Errorf("failed to publish a message to queue %s: %w", topic, err)
	}
	s.logger.Debug("Published message", zap.String("queue", topic), zap.String("key", key))
	return nil
}

// Consume reads the topic's queue on a dedicated channel with manual acks.
// A delivery whose handler keeps failing is nacked and requeued.
// It returns an error when the channel closes; calling it again reconnects.
func (s *RabbitMQService) Consume(ctx context.Context, topic string, handler Handler) error {
	s.mu.Lock()
	conn, err := s.connection()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel for %s: %w", topic, err)
	}
	defer ch.Close()

	q, err := declareQueue(ch, topic)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s for consuming: %w", topic, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS on %s: %w", topic, err)
	}

	msgs, err := ch.Consume(
		q.Name, // queue
		"",     // consumer
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer for queue %s: %w", topic, err)
	}

	s.logger.Info("Waiting for messages", zap.String("queue", q.Name))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("rabbitmq delivery channel closed for queue " + topic)
			}
			if err := handleWithRetry(ctx, s.logger, s.backoff, rabbitMaxAttempts, topic, handler, d.Body); err != nil {
				s.logger.Error("Requeueing message after failed attempts", zap.String("queue", topic), zap.Error(err))
				if nerr := d.Nack(false, true); nerr != nil {
					return fmt.Errorf("failed to nack message on %s: %w", topic, nerr)
				}
				continue
			}
			if err := d.Ack(false); err != nil {
				return fmt.Errorf("failed to ack message on %s: %w", topic, err)
			}
		}
	}
}

// Close closes the RabbitMQ channel and connection.
func (s *RabbitMQService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	var lastErr error
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			s.logger.Error("Error closing RabbitMQ channel", zap.Error(err))
			lastErr = err
		}
	}
	if s.conn != nil && !s.conn.IsClosed() {
		if err := s.conn.Close(); err != nil {
			s.logger.Error("Error closing RabbitMQ connection", zap.Error(err))
			lastErr = err
		}
	}
	if lastErr == nil {
		s.logger.Info("RabbitMQ channel and connection closed successfully")
	}
	return lastErr
}
