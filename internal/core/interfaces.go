package core

import (
	"context"

	"fitcheck-backend/internal/models"
)

// RatingAggregator keeps outfit and user rating statistics in line with the raw ratings.
// Both operations recompute from scratch and are safe to repeat.
type RatingAggregator interface {
	RecomputeOutfit(ctx context.Context, outfitID string) error
	RecomputeUser(ctx context.Context, userID string) error
}

// SuggestionService generates and reads AI stylist suggestions.
type SuggestionService interface {
	GenerateSuggestion(ctx context.Context, callerID, outfitID string) (string, error)
	GetSuggestion(ctx context.Context, callerID, outfitID string) (*models.AISuggestion, error)
}

// CleanupService removes data that depends on a deleted outfit.
type CleanupService interface {
	// HandleOutfitDeleted runs after the outfit document is gone. prior holds its last field values and may be nil.
	HandleOutfitDeleted(ctx context.Context, outfitID string, prior *models.Outfit) error
}

// OutfitService defines the interface for outfit-related operations.
type OutfitService interface {
	CreateOutfit(ctx context.Context, userID string, req models.CreateOutfitRequest) (*models.Outfit, error)
	GetOutfit(ctx context.Context, outfitID string) (*models.Outfit, error)
	ListFeed(ctx context.Context, startAfterID string) ([]*models.Outfit, error)
	ListUserOutfits(ctx context.Context, userID string) ([]*models.Outfit, error)
	DeleteOutfit(ctx context.Context, callerID, outfitID string) error
}

// RatingService defines the interface for rating-related operations.
type RatingService interface {
	SubmitRating(ctx context.Context, userID, outfitID string, value int) (*models.Rating, error)
	GetUserRating(ctx context.Context, userID, outfitID string) (*models.Rating, error)
}

// CommentService defines the interface for comment-related operations.
type CommentService interface {
	AddComment(ctx context.Context, userID, outfitID, text string) (*models.Comment, error)
	ListComments(ctx context.Context, outfitID string) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, callerID, outfitID, commentID string) error
}

// UserService defines the interface for user-related operations.
type UserService interface {
	// GetOrCreate returns the caller's profile, creating it with zeroed stats on first sign-in.
	GetOrCreate(ctx context.Context, userID string, req models.InitializeProfileRequest) (*models.UserProfile, bool, error)
	GetByID(ctx context.Context, userID string) (*models.UserProfile, error)
}

// EventPublisher raises the domain events that drive the aggregator and cleanup consumers.
type EventPublisher interface {
	PublishRatingWritten(ctx context.Context, outfitID, raterID string) error
	PublishOutfitDeleted(ctx context.Context, outfit *models.Outfit) error
}

// LLMClient sends one prompt to the language model.
type LLMClient interface {
	// Complete returns the first text block of the reply ("" when there is none) and the model that produced it.
	Complete(ctx context.Context, prompt string) (text string, model string, err error)
}
