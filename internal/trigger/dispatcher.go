// Package trigger turns queued change events into aggregator and cleanup runs.
package trigger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fitcheck-backend/internal/core"
	"fitcheck-backend/internal/events"
	"fitcheck-backend/pkg/messagequeue"
)

// Dispatcher consumes rating.written and outfit.deleted events. Handler errors
// are returned to the queue, which redelivers the event.
type Dispatcher struct {
	mq           messagequeue.MessageQueue
	topics       events.Topics
	aggregator   core.RatingAggregator
	cleanup      core.CleanupService
	restartDelay time.Duration
	logger       *zap.Logger
}

const consumerRestartDelay = 5 * time.Second

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(mq messagequeue.MessageQueue, topics events.Topics, aggregator core.RatingAggregator, cleanup core.CleanupService, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		mq:           mq,
		topics:       topics,
		aggregator:   aggregator,
		cleanup:      cleanup,
		restartDelay: consumerRestartDelay,
		logger:       logger,
	}
}

// Run consumes both topics until ctx is done. A consumer that stops early is
// restarted after a delay; one topic failing does not stop the other.
func (d *Dispatcher) Run(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return d.keepConsuming(ctx, d.topics.RatingWritten, d.HandleRatingWritten) })
	g.Go(func() error { return d.keepConsuming(ctx, d.topics.OutfitDeleted, d.HandleOutfitDeleted) })
	return g.Wait()
}

func (d *Dispatcher) keepConsuming(ctx context.Context, topic string, handler messagequeue.Handler) error {
	for {
		err := d.mq.Consume(ctx, topic, handler)
		if ctx.Err() != nil {
			return nil
		}
		d.logger.Error("Consumer stopped, restarting",
			zap.String("topic", topic), zap.Duration("delay", d.restartDelay), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(d.restartDelay):
		}
	}
}

// decode returns nil for events that can never be processed; they are
// acknowledged and dropped instead of redelivered forever.
func (d *Dispatcher) decode(body []byte, want events.Type) *events.Event {
	e, err := events.Decode(body)
	if err != nil {
		d.logger.Error("Dropping undecodable event", zap.Error(err), zap.ByteString("body", body))
		return nil
	}
	if e.Type != want {
		d.logger.Error("Dropping event on wrong topic",
			zap.String("eventId", e.ID), zap.String("type", string(e.Type)), zap.String("want", string(want)))
		return nil
	}
	return e
}

// HandleRatingWritten recomputes the outfit's stats and its owner's stats.
func (d *Dispatcher) HandleRatingWritten(ctx context.Context, body []byte) error {
	e := d.decode(body, events.RatingWritten)
	if e == nil {
		return nil
	}
	if err := d.aggregator.RecomputeOutfit(ctx, e.OutfitID); err != nil {
		return fmt.Errorf("rating aggregation for outfit '%s' (event %s): %w", e.OutfitID, e.ID, err)
	}
	return nil
}

// HandleOutfitDeleted runs Cascade Cleanup for the deleted outfit.
func (d *Dispatcher) HandleOutfitDeleted(ctx context.Context, body []byte) error {
	e := d.decode(body, events.OutfitDeleted)
	if e == nil {
		return nil
	}
	if err := d.cleanup.HandleOutfitDeleted(ctx, e.OutfitID, e.Prior); err != nil {
		return fmt.Errorf("cleanup for outfit '%s' (event %s): %w", e.OutfitID, e.ID, err)
	}
	return nil
}
