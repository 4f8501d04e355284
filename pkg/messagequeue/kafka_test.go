package messagequeue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestConsumeLoopBacksOffOnSessionErrors(t *testing.T) {
	b := Backoff{Initial: 20 * time.Millisecond, Max: 20 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()

	calls := 0
	err := consumeLoop(ctx, zap.NewNop(), b, "rating.written", func(context.Context) error {
		calls++
		return errors.New("kafka: client has run out of available brokers")
	})

	assert.NoError(t, err)
	// One attempt per 20ms delay, not a tight loop.
	assert.GreaterOrEqual(t, calls, 2)
	assert.LessOrEqual(t, calls, 7)
}

func TestConsumeLoopStopsWhenGroupClosed(t *testing.T) {
	calls := 0
	err := consumeLoop(context.Background(), zap.NewNop(), DefaultBackoff, "outfit.deleted", func(context.Context) error {
		calls++
		if calls < 3 {
			return nil // rebalance
		}
		return sarama.ErrClosedConsumerGroup
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}
