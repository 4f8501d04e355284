package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"

	"fitcheck-backend/internal/db"
	"fitcheck-backend/internal/models"
)

// userService implements the UserService interface.
type userService struct {
	userRepo db.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a new one
// with zeroed stats. Returns the user, whether it was created, and an error if any.
func (s *userService) GetOrCreate(ctx context.Context, userID string, req models.InitializeProfileRequest) (*models.UserProfile, bool, error) {
	if userID == "" {
		return nil, false, newError(codes.Unauthenticated, "Must be signed in.")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}

	if err := validateUsername(req.Username); err != nil {
		return nil, false, err
	}
	displayName := strings.TrimSpace(req.DisplayName)
	username := strings.ToLower(req.Username)
	if displayName == "" {
		displayName = username
	}
	newUser := &models.UserProfile{
		UID:         userID,
		Username:    username,
		DisplayName: displayName,
		AvatarURL:   req.AvatarURL,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			// Lost a race with a concurrent initialize; return the winner's profile.
			existing, getErr := s.userRepo.GetByID(ctx, userID)
			if getErr != nil {
				return nil, false, fmt.Errorf("failed to get user '%s' after create conflict: %w", userID, getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", userID, err)
	}

	s.logger.Info("User profile created", zap.String("userId", userID), zap.String("username", username))
	return newUser, true, nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	if !validDocumentID(userID) {
		return nil, newError(codes.InvalidArgument, "userId is required.")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, newError(codes.NotFound, "User not found.")
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	return user, nil
}
