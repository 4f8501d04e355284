package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fitcheck-backend/internal/models"
)

// ErrAlreadyExists is returned by Create when the profile document is already present.
var ErrAlreadyExists = errors.New("document already exists")

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client, logger *zap.Logger) UserRepository {
	if client == nil {
		logger.Fatal("Firestore client is not initialized for UserRepository")
	}
	return &firestoreUserRepository{client: client}
}

// Create adds a new user document. The Firebase Auth UID is the document ID.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.UserProfile) error {
	if user.UID == "" {
		return errors.New("user UID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(UsersCollection).Doc(user.UID).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user with ID '%s' already exists: %w", user.UID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user with ID '%s': %w", user.UID, err)
	}
	return nil
}

// GetByID retrieves a user document by Firebase Auth UID.
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(UsersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}

	var user models.UserProfile
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", userID, err)
	}
	user.UID = docSnap.Ref.ID
	return &user, nil
}

// UpdateRatingStats writes the derived stats with field paths so that a
// concurrent outfitCount increment is not clobbered by a stale read.
func (r *firestoreUserRepository) UpdateRatingStats(ctx context.Context, userID string, stats models.UserStats) error {
	return r.update(ctx, userID, []firestore.Update{
		{Path: "stats.outfitCount", Value: stats.OutfitCount},
		{Path: "stats.totalRatingsReceived", Value: stats.TotalRatingsReceived},
		{Path: "stats.averageRatingReceived", Value: stats.AverageRatingReceived},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
}

func (r *firestoreUserRepository) IncrementOutfitCount(ctx context.Context, userID string, delta int) error {
	return r.update(ctx, userID, []firestore.Update{
		{Path: "stats.outfitCount", Value: firestore.Increment(delta)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
}

func (r *firestoreUserRepository) update(ctx context.Context, userID string, updates []firestore.Update) error {
	if userID == "" {
		return errors.New("userID cannot be empty for update operation")
	}
	if _, err := r.client.Collection(UsersCollection).Doc(userID).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("user with ID '%s' not found for update: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to update user with ID '%s': %w", userID, err)
	}
	return nil
}
