package messagequeue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// KafkaService implements the MessageQueue interface using Kafka.
// It publishes with a sync producer and consumes through one consumer group per topic.
type KafkaService struct {
	brokers  []string
	groupID  string
	config   *sarama.Config
	producer sarama.SyncProducer
	backoff  Backoff
	logger   *zap.Logger

	mu     sync.Mutex
	groups []sarama.ConsumerGroup
}

// NewKafkaServiceConfig contains options for creating a new KafkaService.
type NewKafkaServiceConfig struct {
	Brokers []string
	GroupID string
}

func newSaramaConfig() *sarama.Config {
	c := sarama.NewConfig()
	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Return.Successes = true
	c.Producer.Partitioner = sarama.NewHashPartitioner
	c.Consumer.Return.Errors = true
	c.Consumer.Offsets.Initial = sarama.OffsetOldest
	return c
}

// NewKafkaService creates a new instance of KafkaService.
func NewKafkaService(cfg NewKafkaServiceConfig, logger *zap.Logger) (*KafkaService, error) {
	saramaCfg := newSaramaConfig()
	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	logger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Brokers))
	return &KafkaService{
		brokers:  cfg.Brokers,
		groupID:  cfg.GroupID,
		config:   saramaCfg,
		producer: producer,
		backoff:  DefaultBackoff,
		logger:   logger,
	}, nil
}

// Publish sends body keyed by key so that events of one outfit stay on one partition.
func (s *KafkaService) Publish(ctx context.Context, topic, key string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(body),
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}
	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish to kafka topic %s: %w", topic, err)
	}
	s.logger.Debug("Published message", zap.String("topic", topic), zap.String("key", key),
		zap.Int32("partition", partition), zap.Int64("offset", offset))
	return nil
}

// Consume joins the consumer group for topic and blocks until ctx is done.
func (s *KafkaService) Consume(ctx context.Context, topic string, handler Handler) error {
	group, err := sarama.NewConsumerGroup(s.brokers, s.groupID+"."+topic, s.config)
	if err != nil {
		return fmt.Errorf("failed to create consumer group for %s: %w", topic, err)
	}
	s.mu.Lock()
	s.groups = append(s.groups, group)
	s.mu.Unlock()

	go func() {
		for err := range group.Errors() {
			s.logger.Error("Kafka consumer group error", zap.String("topic", topic), zap.Error(err))
		}
	}()

	h := &groupHandler{topic: topic, handler: handler, backoff: s.backoff, logger: s.logger}
	s.logger.Info("Kafka consumer started", zap.String("topic", topic))
	return consumeLoop(ctx, s.logger, s.backoff, topic, func(ctx context.Context) error {
		return group.Consume(ctx, []string{topic}, h)
	})
}

// consumeLoop reruns one consumer-group session after another. A session that
// ends cleanly (rebalance) restarts at once; a failed one waits out the backoff.
func consumeLoop(ctx context.Context, logger *zap.Logger, b Backoff, topic string, session func(context.Context) error) error {
	var delay time.Duration
	for {
		err := session(ctx)
		if errors.Is(err, sarama.ErrClosedConsumerGroup) || ctx.Err() != nil {
			return nil
		}
		if err == nil {
			delay = 0
			continue
		}
		delay = b.next(delay)
		logger.Error("Error from consumer", zap.String("topic", topic), zap.Duration("backoff", delay), zap.Error(err))

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

// Close shuts down the producer and every consumer group.
func (s *KafkaService) Close() error {
	var lastErr error
	s.mu.Lock()
	for _, g := range s.groups {
		if err := g.Close(); err != nil {
			s.logger.Error("Failed to close consumer group", zap.Error(err))
			lastErr = err
		}
	}
	s.groups = nil
	s.mu.Unlock()
	if err := s.producer.Close(); err != nil {
		s.logger.Error("Failed to close kafka producer", zap.Error(err))
		lastErr = err
	}
	return lastErr
}

// groupHandler marks a message only after the handler succeeded, so an
// interrupted message is redelivered after a rebalance or restart.
type groupHandler struct {
	topic   string
	handler Handler
	backoff Backoff
	logger  *zap.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.logger.Info("Kafka consumer setup", zap.String("topic", h.topic))
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.logger.Info("Kafka consumer cleanup", zap.String("topic", h.topic))
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := handleWithRetry(session.Context(), h.logger, h.backoff, 0, h.topic, h.handler, msg.Value); err != nil {
				// Session ended mid-retry; leave the offset unmarked.
				return nil
			}
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
