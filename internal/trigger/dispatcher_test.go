package trigger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fitcheck-backend/internal/events"
	"fitcheck-backend/internal/models"
	"fitcheck-backend/pkg/messagequeue"
)

type recordingAggregator struct {
	mu       sync.Mutex
	failures int
	outfits  []string
	done     chan string
}

func (a *recordingAggregator) RecomputeOutfit(_ context.Context, outfitID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failures > 0 {
		a.failures--
		return errors.New("firestore unavailable")
	}
	a.outfits = append(a.outfits, outfitID)
	a.done <- outfitID
	return nil
}

func (a *recordingAggregator) RecomputeUser(context.Context, string) error { return nil }

type recordingCleanup struct {
	done chan *models.Outfit
}

func (c *recordingCleanup) HandleOutfitDeleted(_ context.Context, outfitID string, prior *models.Outfit) error {
	if prior == nil {
		prior = &models.Outfit{ID: outfitID}
	}
	c.done <- prior
	return nil
}

var testTopics = events.Topics{RatingWritten: "rating-written", OutfitDeleted: "outfit-deleted"}

func startDispatcher(t *testing.T, agg *recordingAggregator, cleanup *recordingCleanup) (*events.Publisher, messagequeue.MessageQueue) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	mq := messagequeue.NewMemoryQueue(messagequeue.NewMemoryQueueConfig{
		Backoff: messagequeue.Backoff{Initial: time.Millisecond, Max: 5 * time.Millisecond},
	}, zap.NewNop())
	d := NewDispatcher(mq, testTopics, agg, cleanup, zap.NewNop())

	runDone := make(chan error, 1)
	go func() { runDone <- d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-runDone
		mq.Close()
	})
	return events.NewPublisher(mq, testTopics, events.SourceAPI, zap.NewNop()), mq
}

func TestDispatcherRoutesRatingWritten(t *testing.T) {
	agg := &recordingAggregator{done: make(chan string, 4)}
	pub, _ := startDispatcher(t, agg, &recordingCleanup{done: make(chan *models.Outfit, 1)})

	require.NoError(t, pub.PublishRatingWritten(context.Background(), "o1", "rater"))

	select {
	case id := <-agg.done:
		assert.Equal(t, "o1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("aggregator not invoked")
	}
}

func TestDispatcherRedeliversAfterAggregatorFailure(t *testing.T) {
	agg := &recordingAggregator{failures: 2, done: make(chan string, 4)}
	pub, _ := startDispatcher(t, agg, &recordingCleanup{done: make(chan *models.Outfit, 1)})

	require.NoError(t, pub.PublishRatingWritten(context.Background(), "o1", "rater"))

	select {
	case id := <-agg.done:
		assert.Equal(t, "o1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("event not redelivered")
	}
	agg.mu.Lock()
	defer agg.mu.Unlock()
	assert.Equal(t, 0, agg.failures)
}

func TestDispatcherRoutesOutfitDeletedWithPrior(t *testing.T) {
	cleanup := &recordingCleanup{done: make(chan *models.Outfit, 1)}
	pub, _ := startDispatcher(t, &recordingAggregator{done: make(chan string, 1)}, cleanup)

	prior := &models.Outfit{ID: "o9", UserID: "owner", StoragePath: "outfits/owner/o9.jpg"}
	require.NoError(t, pub.PublishOutfitDeleted(context.Background(), prior))

	select {
	case got := <-cleanup.done:
		assert.Equal(t, "o9", got.ID)
		assert.Equal(t, "owner", got.UserID)
		assert.Equal(t, "outfits/owner/o9.jpg", got.StoragePath)
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup not invoked")
	}
}

func TestDispatcherDropsMalformedEvents(t *testing.T) {
	agg := &recordingAggregator{done: make(chan string, 4)}
	pub, mq := startDispatcher(t, agg, &recordingCleanup{done: make(chan *models.Outfit, 1)})
	ctx := context.Background()

	require.NoError(t, mq.Publish(ctx, testTopics.RatingWritten, "", []byte("{broken")))
	require.NoError(t, mq.Publish(ctx, testTopics.RatingWritten, "o2", []byte(`{"id":"x","type":"outfit.deleted","outfitId":"o2"}`)))
	require.NoError(t, pub.PublishRatingWritten(ctx, "o3", "rater"))

	// The valid event queued behind the bad ones still arrives.
	select {
	case id := <-agg.done:
		assert.Equal(t, "o3", id)
	case <-time.After(2 * time.Second):
		t.Fatal("queue stuck on malformed event")
	}
}

func TestHandleRatingWrittenReturnsAggregatorError(t *testing.T) {
	agg := &recordingAggregator{failures: 1, done: make(chan string, 1)}
	d := NewDispatcher(nil, testTopics, agg, nil, zap.NewNop())

	body, err := events.Encode(&events.Event{ID: "e1", Type: events.RatingWritten, OutfitID: "o1"})
	require.NoError(t, err)

	err = d.HandleRatingWritten(context.Background(), body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "o1")
}

// flakyQueue fails the first Consume call per topic, then delegates.
type flakyQueue struct {
	messagequeue.MessageQueue
	mu     sync.Mutex
	failed map[string]int
}

func (q *flakyQueue) Consume(ctx context.Context, topic string, handler messagequeue.Handler) error {
	q.mu.Lock()
	q.failed[topic]++
	first := q.failed[topic] == 1
	q.mu.Unlock()
	if first {
		return errors.New("delivery channel closed")
	}
	return q.MessageQueue.Consume(ctx, topic, handler)
}

func TestDispatcherRestartsFailedConsumer(t *testing.T) {
	mem := messagequeue.NewMemoryQueue(messagequeue.NewMemoryQueueConfig{}, zap.NewNop())
	mq := &flakyQueue{MessageQueue: mem, failed: map[string]int{}}
	agg := &recordingAggregator{done: make(chan string, 1)}
	cleanup := &recordingCleanup{done: make(chan *models.Outfit, 1)}
	d := NewDispatcher(mq, testTopics, agg, cleanup, zap.NewNop())
	d.restartDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- d.Run(ctx) }()
	defer mem.Close()

	pub := events.NewPublisher(mq, testTopics, events.SourceAPI, zap.NewNop())
	require.NoError(t, pub.PublishRatingWritten(ctx, "o1", "rater"))
	require.NoError(t, pub.PublishOutfitDeleted(ctx, &models.Outfit{ID: "o2", UserID: "owner"}))

	select {
	case id := <-agg.done:
		assert.Equal(t, "o1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("rating consumer not restarted")
	}
	select {
	case got := <-cleanup.done:
		assert.Equal(t, "o2", got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("deletion consumer not restarted")
	}

	cancel()
	select {
	case err := <-runDone:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
	mq.mu.Lock()
	defer mq.mu.Unlock()
	assert.Equal(t, 2, mq.failed[testTopics.RatingWritten])
}
