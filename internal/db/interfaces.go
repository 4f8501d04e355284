package db

import (
	"context"
	"errors"
	"time"

	"fitcheck-backend/internal/models"
)

// ErrNotFound is returned when a document does not exist in Firestore.
var ErrNotFound = errors.New("document not found")

// OutfitRepository defines the storage operations on outfit documents.
type OutfitRepository interface {
	Create(ctx context.Context, outfit *models.Outfit) (string, error) // Returns new outfit ID
	GetByID(ctx context.Context, outfitID string) (*models.Outfit, error)
	ListFeed(ctx context.Context, limit int, startAfterID string) ([]*models.Outfit, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Outfit, error)
	ListIDs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, outfitID string) error
	// UpdateRatingStats overwrites the derived rating fields. Returns ErrNotFound if the outfit is gone.
	UpdateRatingStats(ctx context.Context, outfitID string, ratingCount int, averageRating float64) error
	SetAISuggestionGeneratedAt(ctx context.Context, outfitID string, at time.Time) error
	IncrementCommentCount(ctx context.Context, outfitID string, delta int) error
}

// RatingRepository defines the storage operations on an outfit's ratings sub-collection.
type RatingRepository interface {
	// Upsert writes the rater's value, keeping the original createdAt on re-votes.
	Upsert(ctx context.Context, outfitID, userID string, value int) (*models.Rating, error)
	Get(ctx context.Context, outfitID, userID string) (*models.Rating, error)
	// ListValues returns rating values; limit <= 0 means all.
	ListValues(ctx context.Context, outfitID string, limit int) ([]int, error)
	DeleteAll(ctx context.Context, outfitID string) error
}

// CommentRepository defines the storage operations on an outfit's comments sub-collection.
type CommentRepository interface {
	Add(ctx context.Context, outfitID string, comment *models.Comment) (string, error)
	Get(ctx context.Context, outfitID, commentID string) (*models.Comment, error)
	Delete(ctx context.Context, outfitID, commentID string) error
	// ListRecent returns the newest comments first.
	ListRecent(ctx context.Context, outfitID string, limit int) ([]*models.Comment, error)
	// ListAll returns comments oldest first.
	ListAll(ctx context.Context, outfitID string) ([]*models.Comment, error)
	DeleteAll(ctx context.Context, outfitID string) error
}

// UserRepository defines the storage operations on user profile documents.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.UserProfile, error)
	Create(ctx context.Context, user *models.UserProfile) error
	// UpdateRatingStats overwrites the derived stats. Returns ErrNotFound if the user is gone.
	UpdateRatingStats(ctx context.Context, userID string, stats models.UserStats) error
	IncrementOutfitCount(ctx context.Context, userID string, delta int) error
}

// SuggestionRepository defines the storage operations on AI suggestion documents.
type SuggestionRepository interface {
	Get(ctx context.Context, outfitID string) (*models.AISuggestion, error)
	// Save creates or overwrites the suggestion and returns the server-assigned generation time.
	Save(ctx context.Context, suggestion *models.AISuggestion) (time.Time, error)
	// Delete removes the suggestion. Deleting an absent suggestion is not an error.
	Delete(ctx context.Context, outfitID string) error
}
