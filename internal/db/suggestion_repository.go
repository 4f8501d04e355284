package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fitcheck-backend/internal/models"
)

// firestoreSuggestionRepository stores one suggestion per outfit at aiSuggestions/{outfitId}.
type firestoreSuggestionRepository struct {
	client *firestore.Client
}

// NewFirestoreSuggestionRepository creates a new instance of firestoreSuggestionRepository.
func NewFirestoreSuggestionRepository(client *firestore.Client, logger *zap.Logger) SuggestionRepository {
	if client == nil {
		logger.Fatal("Firestore client is not initialized for SuggestionRepository")
	}
	return &firestoreSuggestionRepository{client: client}
}

func (r *firestoreSuggestionRepository) Get(ctx context.Context, outfitID string) (*models.AISuggestion, error) {
	if outfitID == "" {
		return nil, errors.New("outfitID cannot be empty for Get operation")
	}
	docSnap, err := r.client.Collection(AISuggestionsCollection).Doc(outfitID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("suggestion for outfit '%s' not found: %w", outfitID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get suggestion for outfit '%s': %w", outfitID, err)
	}
	var suggestion models.AISuggestion
	if err := docSnap.DataTo(&suggestion); err != nil {
		return nil, fmt.Errorf("failed to decode suggestion for outfit '%s': %w", outfitID, err)
	}
	return &suggestion, nil
}

// Save overwrites the outfit's suggestion. GeneratedAt carries a serverTimestamp
// tag, so the commit time of the write is the generation time.
func (r *firestoreSuggestionRepository) Save(ctx context.Context, suggestion *models.AISuggestion) (time.Time, error) {
	if suggestion.OutfitID == "" {
		return time.Time{}, errors.New("suggestion OutfitID cannot be empty for Save operation")
	}
	suggestion.GeneratedAt = time.Time{}
	wr, err := r.client.Collection(AISuggestionsCollection).Doc(suggestion.OutfitID).Set(ctx, suggestion)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to save suggestion for outfit '%s': %w", suggestion.OutfitID, err)
	}
	suggestion.GeneratedAt = wr.UpdateTime
	return wr.UpdateTime, nil
}

func (r *firestoreSuggestionRepository) Delete(ctx context.Context, outfitID string) error {
	if outfitID == "" {
		return errors.New("outfitID cannot be empty for Delete operation")
	}
	// Deleting a missing document succeeds without a precondition.
	if _, err := r.client.Collection(AISuggestionsCollection).Doc(outfitID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete suggestion for outfit '%s': %w", outfitID, err)
	}
	return nil
}
