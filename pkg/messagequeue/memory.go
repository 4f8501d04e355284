package messagequeue

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const defaultMemoryBuffer = 256

// MemoryQueue is an in-process MessageQueue backed by buffered channels.
// Consumers of the same topic compete for messages. Messages are lost on exit.
type MemoryQueue struct {
	mu      sync.Mutex
	topics  map[string]chan []byte
	buffer  int
	closed  bool
	done    chan struct{}
	backoff Backoff
	logger  *zap.Logger
}

// NewMemoryQueueConfig contains options for creating a new MemoryQueue.
type NewMemoryQueueConfig struct {
	Buffer  int     // per-topic channel capacity, defaults to 256
	Backoff Backoff // defaults to DefaultBackoff
}

// NewMemoryQueue creates a new MemoryQueue.
func NewMemoryQueue(cfg NewMemoryQueueConfig, logger *zap.Logger) *MemoryQueue {
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultMemoryBuffer
	}
	if cfg.Backoff.Initial <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	return &MemoryQueue{
		topics:  make(map[string]chan []byte),
		buffer:  cfg.Buffer,
		done:    make(chan struct{}),
		backoff: cfg.Backoff,
		logger:  logger,
	}
}

func (q *MemoryQueue) topic(name string) (chan []byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrClosed
	}
	ch, ok := q.topics[name]
	if !ok {
		ch = make(chan []byte, q.buffer)
		q.topics[name] = ch
	}
	return ch, nil
}

// Publish enqueues a copy of body. It blocks while the topic buffer is full.
func (q *MemoryQueue) Publish(ctx context.Context, topic, _ string, body []byte) error {
	ch, err := q.topic(topic)
	if err != nil {
		return err
	}
	msg := append([]byte(nil), body...)
	select {
	case ch <- msg:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume delivers messages to handler, retrying each failed message in place
// until it succeeds. It returns nil when ctx is done or the queue is closed.
func (q *MemoryQueue) Consume(ctx context.Context, topic string, handler Handler) error {
	ch, err := q.topic(topic)
	if err != nil {
		return err
	}
	q.logger.Info("Consuming in-memory topic", zap.String("topic", topic))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-q.done:
			return nil
		case body := <-ch:
			if err := handleWithRetry(ctx, q.logger, q.backoff, 0, topic, handler, body); err != nil {
				// Only reached on shutdown; put the message back for whoever drains next.
				select {
				case ch <- body:
				default:
					q.logger.Error("Dropping unhandled message on shutdown", zap.String("topic", topic), zap.Error(err))
				}
				return nil
			}
		}
	}
}

// Close stops all consumers. Buffered messages are discarded.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
	return nil
}
