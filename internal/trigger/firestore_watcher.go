package trigger

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fitcheck-backend/internal/core"
	"fitcheck-backend/internal/db"
	"fitcheck-backend/internal/models"
)

const watchRestartDelay = 5 * time.Second

// FirestoreWatcher publishes events for rating writes and outfit deletions made
// directly against Firestore by mobile clients. The initial snapshot of each
// listener is skipped; the reconciliation sweep covers changes made while the
// listener was down.
type FirestoreWatcher struct {
	client *firestore.Client
	events core.EventPublisher
	logger *zap.Logger
}

// NewFirestoreWatcher creates a new FirestoreWatcher.
func NewFirestoreWatcher(client *firestore.Client, events core.EventPublisher, logger *zap.Logger) *FirestoreWatcher {
	return &FirestoreWatcher{client: client, events: events, logger: logger}
}

// Run listens until ctx is done, restarting a listener that fails.
func (w *FirestoreWatcher) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.keepWatching(gctx, "ratings", func(ctx context.Context) error {
			return w.watch(ctx, w.client.CollectionGroup(db.RatingsCollection).Query, w.onRatingChange)
		})
	})
	g.Go(func() error {
		return w.keepWatching(gctx, "outfits", func(ctx context.Context) error {
			return w.watch(ctx, w.client.Collection(db.OutfitsCollection).Query, w.onOutfitChange)
		})
	})
	return g.Wait()
}

func (w *FirestoreWatcher) keepWatching(ctx context.Context, name string, watch func(context.Context) error) error {
	for {
		err := watch(ctx)
		if ctx.Err() != nil {
			return nil
		}
		w.logger.Error("Firestore listener stopped, restarting", zap.String("listener", name), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(watchRestartDelay):
		}
	}
}

func (w *FirestoreWatcher) watch(ctx context.Context, q firestore.Query, onChange func(context.Context, firestore.DocumentChange)) error {
	it := q.Snapshots(ctx)
	defer it.Stop()

	initial := true
	for {
		snap, err := it.Next()
		if err != nil {
			if status.Code(err) == codes.Canceled || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if initial {
			initial = false
			continue
		}
		for _, change := range snap.Changes {
			onChange(ctx, change)
		}
	}
}

func (w *FirestoreWatcher) onRatingChange(ctx context.Context, change firestore.DocumentChange) {
	outfitID, raterID, ok := parseRatingPath(change.Doc.Ref.Path)
	if !ok {
		return
	}
	if err := w.events.PublishRatingWritten(ctx, outfitID, raterID); err != nil {
		w.logger.Error("Failed to publish rating.written from listener", zap.String("outfitId", outfitID), zap.Error(err))
	}
}

func (w *FirestoreWatcher) onOutfitChange(ctx context.Context, change firestore.DocumentChange) {
	if change.Kind != firestore.DocumentRemoved {
		return
	}
	prior := &models.Outfit{}
	if err := change.Doc.DataTo(prior); err != nil {
		w.logger.Warn("Could not decode removed outfit, cleaning up without prior data",
			zap.String("outfitId", change.Doc.Ref.ID), zap.Error(err))
	}
	prior.ID = change.Doc.Ref.ID
	if err := w.events.PublishOutfitDeleted(ctx, prior); err != nil {
		w.logger.Error("Failed to publish outfit.deleted from listener", zap.String("outfitId", prior.ID), zap.Error(err))
	}
}

// parseRatingPath extracts the outfit and rater IDs from a full document path
// of the form .../documents/outfits/{outfitId}/ratings/{raterId}. Ratings
// collections nested anywhere else are ignored.
func parseRatingPath(path string) (outfitID, raterID string, ok bool) {
	const marker = "/documents/"
	i := strings.Index(path, marker)
	if i < 0 {
		return "", "", false
	}
	parts := strings.Split(path[i+len(marker):], "/")
	if len(parts) != 4 || parts[0] != db.OutfitsCollection || parts[2] != db.RatingsCollection {
		return "", "", false
	}
	if parts[1] == "" || parts[3] == "" {
		return "", "", false
	}
	return parts[1], parts[3], true
}
