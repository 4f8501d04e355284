package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fitcheck-backend/internal/models"
)

// firestoreRatingRepository stores ratings at outfits/{outfitId}/ratings/{raterId}.
type firestoreRatingRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreRatingRepository creates a new instance of firestoreRatingRepository.
func NewFirestoreRatingRepository(client *firestore.Client, logger *zap.Logger) RatingRepository {
	if client == nil {
		logger.Fatal("Firestore client is not initialized for RatingRepository")
	}
	return &firestoreRatingRepository{client: client, logger: logger}
}

func (r *firestoreRatingRepository) ratings(outfitID string) *firestore.CollectionRef {
	return r.client.Collection(OutfitsCollection).Doc(outfitID).Collection(RatingsCollection)
}

// Upsert writes the rater's vote inside a transaction so that a concurrent
// re-vote cannot lose the original createdAt.
func (r *firestoreRatingRepository) Upsert(ctx context.Context, outfitID, userID string, value int) (*models.Rating, error) {
	if outfitID == "" || userID == "" {
		return nil, errors.New("outfitID and userID cannot be empty for Upsert operation")
	}
	ref := r.ratings(outfitID).Doc(userID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		data := map[string]interface{}{
			"userId":    userID,
			"value":     value,
			"updatedAt": firestore.ServerTimestamp,
		}
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			if createdAt, cerr := snap.DataAt("createdAt"); cerr == nil && createdAt != nil {
				data["createdAt"] = createdAt
			} else {
				data["createdAt"] = firestore.ServerTimestamp
			}
		case status.Code(err) == codes.NotFound:
			data["createdAt"] = firestore.ServerTimestamp
		default:
			return err
		}
		return tx.Set(ref, data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert rating for outfit '%s' by '%s': %w", outfitID, userID, err)
	}
	return r.Get(ctx, outfitID, userID)
}

// Get returns the rating cast by userID on outfitID.
func (r *firestoreRatingRepository) Get(ctx context.Context, outfitID, userID string) (*models.Rating, error) {
	if outfitID == "" || userID == "" {
		return nil, errors.New("outfitID and userID cannot be empty for Get operation")
	}
	docSnap, err := r.ratings(outfitID).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("rating by '%s' on outfit '%s' not found: %w", userID, outfitID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get rating by '%s' on outfit '%s': %w", userID, outfitID, err)
	}
	var rating models.Rating
	if err := docSnap.DataTo(&rating); err != nil {
		return nil, fmt.Errorf("failed to decode rating '%s' on outfit '%s': %w", userID, outfitID, err)
	}
	return &rating, nil
}

// ListValues reads the value field of the outfit's ratings.
func (r *firestoreRatingRepository) ListValues(ctx context.Context, outfitID string, limit int) ([]int, error) {
	if outfitID == "" {
		return nil, errors.New("outfitID cannot be empty for ListValues operation")
	}
	query := r.ratings(outfitID).Select("value")
	if limit > 0 {
		query = query.Limit(limit)
	}
	iter := query.Documents(ctx)
	defer iter.Stop()

	values := []int{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate ratings for outfit '%s': %w", outfitID, err)
		}
		raw, err := doc.DataAt("value")
		if err != nil {
			r.logger.Warn("Rating document has no value, skipping", zap.String("outfitId", outfitID), zap.String("raterId", doc.Ref.ID))
			continue
		}
		v, ok := raw.(int64)
		if !ok {
			r.logger.Warn("Rating value is not an integer, skipping", zap.String("outfitId", outfitID), zap.String("raterId", doc.Ref.ID))
			continue
		}
		values = append(values, int(v))
	}
	return values, nil
}

// DeleteAll removes every rating under the outfit.
func (r *firestoreRatingRepository) DeleteAll(ctx context.Context, outfitID string) error {
	if outfitID == "" {
		return errors.New("outfitID cannot be empty for DeleteAll operation")
	}
	if err := deleteCollection(ctx, r.client, r.ratings(outfitID)); err != nil {
		return fmt.Errorf("failed to delete ratings for outfit '%s': %w", outfitID, err)
	}
	return nil
}

// deleteCollection removes every document of col with a BulkWriter.
func deleteCollection(ctx context.Context, client *firestore.Client, col *firestore.CollectionRef) error {
	bw := client.BulkWriter(ctx)
	iter := col.Select().Documents(ctx)
	defer iter.Stop()

	var jobs []*firestore.BulkWriterJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bw.End()
			return err
		}
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil && status.Code(err) != codes.NotFound {
			return err
		}
	}
	return nil
}
