package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fitcheck-backend/internal/models"
)

// firestoreOutfitRepository implements the OutfitRepository interface using Firestore.
type firestoreOutfitRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreOutfitRepository creates a new instance of firestoreOutfitRepository.
func NewFirestoreOutfitRepository(client *firestore.Client, logger *zap.Logger) OutfitRepository {
	if client == nil {
		logger.Fatal("Firestore client is not initialized for OutfitRepository")
	}
	return &firestoreOutfitRepository{client: client, logger: logger}
}

func (r *firestoreOutfitRepository) outfits() *firestore.CollectionRef {
	return r.client.Collection(OutfitsCollection)
}

// Create adds a new outfit document with an auto-generated ID.
// Rating and comment aggregates start at zero regardless of what the caller set.
func (r *firestoreOutfitRepository) Create(ctx context.Context, outfit *models.Outfit) (string, error) {
	docRef := r.outfits().NewDoc()
	outfit.ID = docRef.ID
	outfit.RatingCount = 0
	outfit.AverageRating = 0
	outfit.CommentCount = 0
	outfit.AISuggestionGeneratedAt = nil

	if _, err := docRef.Create(ctx, outfit); err != nil {
		return "", fmt.Errorf("failed to create outfit: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves an outfit document by its ID.
func (r *firestoreOutfitRepository) GetByID(ctx context.Context, outfitID string) (*models.Outfit, error) {
	if outfitID == "" {
		return nil, errors.New("outfitID cannot be empty for GetByID operation")
	}
	docSnap, err := r.outfits().Doc(outfitID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("outfit with ID '%s' not found: %w", outfitID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get outfit with ID '%s': %w", outfitID, err)
	}
	return decodeOutfit(docSnap)
}

// ListFeed returns outfits newest first. startAfterID, when set, is the last
// document ID of the previous page.
func (r *firestoreOutfitRepository) ListFeed(ctx context.Context, limit int, startAfterID string) ([]*models.Outfit, error) {
	query := r.outfits().OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if startAfterID != "" {
		startAfterSnap, err := r.outfits().Doc(startAfterID).Get(ctx)
		if err == nil {
			query = query.StartAfter(startAfterSnap)
		} else {
			r.logger.Warn("Could not fetch startAfter document, pagination restarts from the top",
				zap.String("startAfter", startAfterID), zap.Error(err))
		}
	}
	return r.collect(query.Documents(ctx), "feed")
}

// ListByOwner returns every outfit owned by userID. It is unordered because the
// aggregator only sums over the set.
func (r *firestoreOutfitRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Outfit, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListByOwner operation")
	}
	return r.collect(r.outfits().Where("userId", "==", userID).Documents(ctx), "owner "+userID)
}

// ListIDs returns the IDs of all outfit documents.
func (r *firestoreOutfitRepository) ListIDs(ctx context.Context) ([]string, error) {
	iter := r.outfits().Select().Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate outfit IDs: %w", err)
		}
		ids = append(ids, doc.Ref.ID)
	}
	return ids, nil
}

// Delete removes an outfit document. Sub-collections are left for Cascade Cleanup.
func (r *firestoreOutfitRepository) Delete(ctx context.Context, outfitID string) error {
	if outfitID == "" {
		return errors.New("outfitID cannot be empty for Delete operation")
	}
	if _, err := r.outfits().Doc(outfitID).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("outfit with ID '%s' not found for deletion: %w", outfitID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete outfit with ID '%s': %w", outfitID, err)
	}
	return nil
}

func (r *firestoreOutfitRepository) UpdateRatingStats(ctx context.Context, outfitID string, ratingCount int, averageRating float64) error {
	return r.update(ctx, outfitID, []firestore.Update{
		{Path: "ratingCount", Value: ratingCount},
		{Path: "averageRating", Value: averageRating},
	})
}

func (r *firestoreOutfitRepository) SetAISuggestionGeneratedAt(ctx context.Context, outfitID string, at time.Time) error {
	return r.update(ctx, outfitID, []firestore.Update{
		{Path: "aiSuggestionGeneratedAt", Value: at},
	})
}

func (r *firestoreOutfitRepository) IncrementCommentCount(ctx context.Context, outfitID string, delta int) error {
	return r.update(ctx, outfitID, []firestore.Update{
		{Path: "commentCount", Value: firestore.Increment(delta)},
	})
}

// update applies field updates and maps a missing document to ErrNotFound.
// DocumentRef.Update fails with NotFound rather than creating the document.
func (r *firestoreOutfitRepository) update(ctx context.Context, outfitID string, updates []firestore.Update) error {
	if outfitID == "" {
		return errors.New("outfitID cannot be empty for update operation")
	}
	if _, err := r.outfits().Doc(outfitID).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("outfit with ID '%s' not found for update: %w", outfitID, ErrNotFound)
		}
		return fmt.Errorf("failed to update outfit with ID '%s': %w", outfitID, err)
	}
	return nil
}

func (r *firestoreOutfitRepository) collect(iter *firestore.DocumentIterator, what string) ([]*models.Outfit, error) {
	defer iter.Stop()

	var outfits []*models.Outfit
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate outfits (%s): %w", what, err)
		}
		outfit, err := decodeOutfit(doc)
		if err != nil {
			r.logger.Error("Error decoding outfit data, skipping", zap.String("outfitId", doc.Ref.ID), zap.Error(err))
			continue
		}
		outfits = append(outfits, outfit)
	}
	return outfits, nil
}

func decodeOutfit(doc *firestore.DocumentSnapshot) (*models.Outfit, error) {
	var outfit models.Outfit
	if err := doc.DataTo(&outfit); err != nil {
		return nil, fmt.Errorf("failed to decode outfit data for ID '%s': %w", doc.Ref.ID, err)
	}
	outfit.ID = doc.Ref.ID
	return &outfit, nil
}
