package messagequeue

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Handler processes one message. A non-nil error means the message was not
// handled and must be delivered again.
type Handler func(ctx context.Context, body []byte) error

// MessageQueue defines the interface for message queue services.
// Delivery is at-least-once, so handlers must be idempotent.
type MessageQueue interface {
	// Publish sends body to topic. key groups related messages where the broker supports it.
	Publish(ctx context.Context, topic, key string, body []byte) error
	// Consume blocks, feeding messages from topic to handler until ctx is done.
	Consume(ctx context.Context, topic string, handler Handler) error
	Close() error
}

// ErrClosed is returned when publishing on a queue that has been closed.
var ErrClosed = errors.New("message queue closed")

// Backoff is the capped exponential delay between handler retries.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

// DefaultBackoff starts at 100ms and doubles up to 5s.
var DefaultBackoff = Backoff{Initial: 100 * time.Millisecond, Max: 5 * time.Second}

func (b Backoff) next(d time.Duration) time.Duration {
	if d <= 0 {
		return b.Initial
	}
	d *= 2
	if d > b.Max {
		d = b.Max
	}
	return d
}

// handleWithRetry runs handler until it succeeds, maxAttempts is reached
// (0 means no limit) or ctx is done. It returns the last handler error.
func handleWithRetry(ctx context.Context, logger *zap.Logger, b Backoff, maxAttempts int, topic string, handler Handler, body []byte) error {
	var delay time.Duration
	for attempt := 1; ; attempt++ {
		err := handler(ctx, body)
		if err == nil {
			return nil
		}
		if maxAttempts > 0 && attempt >= maxAttempts {
			return err
		}
		delay = b.next(delay)
		logger.Warn("Message handler failed, retrying",
			zap.String("topic", topic), zap.Int("attempt", attempt), zap.Duration("backoff", delay), zap.Error(err))

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
}
