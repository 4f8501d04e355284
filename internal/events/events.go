// Package events defines the messages exchanged between the API, the change
// listener and the background consumers.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fitcheck-backend/internal/models"
	"fitcheck-backend/pkg/messagequeue"
)

// Type names the kind of change an event reports.
type Type string

const (
	RatingWritten Type = "rating.written"
	OutfitDeleted Type = "outfit.deleted"
)

// Sources of events.
const (
	SourceAPI       = "api"
	SourceFirestore = "firestore"
	SourceReconcile = "reconcile"
)

// Event is the envelope carried on the message queue.
type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	OutfitID   string         `json:"outfitId"`
	RaterID    string         `json:"raterId,omitempty"`
	Prior      *models.Outfit `json:"prior,omitempty"` // outfit fields before deletion
	Source     string         `json:"source"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Encode serializes e as JSON.
func Encode(e *Event) ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses an event and checks the fields every consumer relies on.
func Decode(body []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("malformed event: %w", err)
	}
	if e.OutfitID == "" {
		return nil, fmt.Errorf("event %s has no outfitId", e.ID)
	}
	return &e, nil
}

// Topics maps event types to queue topics.
type Topics struct {
	RatingWritten string
	OutfitDeleted string
}

// For returns the topic of t.
func (t Topics) For(typ Type) string {
	switch typ {
	case RatingWritten:
		return t.RatingWritten
	case OutfitDeleted:
		return t.OutfitDeleted
	}
	return ""
}

// Publisher encodes domain events onto the message queue.
type Publisher struct {
	mq     messagequeue.MessageQueue
	topics Topics
	source string
	now    func() time.Time
	logger *zap.Logger
}

// NewPublisher creates a Publisher stamping events with source.
func NewPublisher(mq messagequeue.MessageQueue, topics Topics, source string, logger *zap.Logger) *Publisher {
	return &Publisher{mq: mq, topics: topics, source: source, now: time.Now, logger: logger}
}

func (p *Publisher) publish(ctx context.Context, e *Event) error {
	e.ID = uuid.NewString()
	e.Source = p.source
	e.OccurredAt = p.now().UTC()

	body, err := Encode(e)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", e.Type, err)
	}
	topic := p.topics.For(e.Type)
	if err := p.mq.Publish(ctx, topic, e.OutfitID, body); err != nil {
		return fmt.Errorf("failed to publish %s event for outfit '%s': %w", e.Type, e.OutfitID, err)
	}
	p.logger.Debug("Event published",
		zap.String("type", string(e.Type)), zap.String("outfitId", e.OutfitID), zap.String("eventId", e.ID))
	return nil
}

// PublishRatingWritten reports that a rating of outfitID was created, changed or removed.
func (p *Publisher) PublishRatingWritten(ctx context.Context, outfitID, raterID string) error {
	return p.publish(ctx, &Event{Type: RatingWritten, OutfitID: outfitID, RaterID: raterID})
}

// PublishOutfitDeleted reports that outfit was deleted. outfit holds its last field values.
func (p *Publisher) PublishOutfitDeleted(ctx context.Context, outfit *models.Outfit) error {
	return p.publish(ctx, &Event{Type: OutfitDeleted, OutfitID: outfit.ID, Prior: outfit})
}
