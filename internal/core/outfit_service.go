package core

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"

	"fitcheck-backend/internal/db"
	"fitcheck-backend/internal/models"
)

// outfitService implements the OutfitService interface.
type outfitService struct {
	outfitRepo db.OutfitRepository
	userRepo   db.UserRepository
	events     EventPublisher // nil when a change listener raises the events
	logger     *zap.Logger
}

// NewOutfitService creates a new OutfitService instance. events may be nil.
func NewOutfitService(or db.OutfitRepository, ur db.UserRepository, events EventPublisher, logger *zap.Logger) OutfitService {
	return &outfitService{outfitRepo: or, userRepo: ur, events: events, logger: logger}
}

// CreateOutfit stores a new outfit with zeroed aggregates and bumps the owner's outfitCount.
func (s *outfitService) CreateOutfit(ctx context.Context, userID string, req models.CreateOutfitRequest) (*models.Outfit, error) {
	if err := validateOutfitRequest(&req); err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, newError(codes.FailedPrecondition, "Initialize your profile before posting outfits.")
		}
		return nil, fmt.Errorf("failed to load owner profile '%s': %w", userID, err)
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	outfit := &models.Outfit{
		UserID:        userID,
		Username:      owner.Username,
		UserAvatarURL: owner.AvatarURL,
		ImageURL:      req.ImageURL,
		StoragePath:   req.StoragePath,
		Caption:       req.Caption,
		Tags:          tags,
	}
	if _, err := s.outfitRepo.Create(ctx, outfit); err != nil {
		return nil, fmt.Errorf("failed to create outfit in repository: %w", err)
	}

	if err := s.userRepo.IncrementOutfitCount(ctx, userID, 1); err != nil {
		// The next stats recompute restores the count.
		s.logger.Warn("Failed to increment outfit count", zap.String("userId", userID), zap.Error(err))
	}
	return outfit, nil
}

func (s *outfitService) GetOutfit(ctx context.Context, outfitID string) (*models.Outfit, error) {
	if !validDocumentID(outfitID) {
		return nil, newError(codes.InvalidArgument, "outfitId is required.")
	}
	outfit, err := s.outfitRepo.GetByID(ctx, outfitID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, newError(codes.NotFound, "Outfit not found.")
		}
		return nil, fmt.Errorf("failed to get outfit '%s': %w", outfitID, err)
	}
	return outfit, nil
}

// ListFeed returns one feed page, newest first.
func (s *outfitService) ListFeed(ctx context.Context, startAfterID string) ([]*models.Outfit, error) {
	outfits, err := s.outfitRepo.ListFeed(ctx, FeedPageSize, startAfterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	return outfits, nil
}

// ListUserOutfits returns the user's outfits, newest first.
func (s *outfitService) ListUserOutfits(ctx context.Context, userID string) ([]*models.Outfit, error) {
	if !validDocumentID(userID) {
		return nil, newError(codes.InvalidArgument, "userId is required.")
	}
	outfits, err := s.outfitRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outfits of user '%s': %w", userID, err)
	}
	sort.SliceStable(outfits, func(i, j int) bool {
		return outfits[i].CreatedAt.After(outfits[j].CreatedAt)
	})
	return outfits, nil
}

// DeleteOutfit removes an outfit owned by the caller and raises outfit.deleted
// for the cleanup consumer.
func (s *outfitService) DeleteOutfit(ctx context.Context, callerID, outfitID string) error {
	outfit, err := s.GetOutfit(ctx, outfitID)
	if err != nil {
		return err
	}
	if outfit.UserID != callerID {
		return newError(codes.PermissionDenied, "Only the outfit owner can delete it.")
	}

	if err := s.outfitRepo.Delete(ctx, outfitID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return newError(codes.NotFound, "Outfit not found.")
		}
		return fmt.Errorf("failed to delete outfit '%s': %w", outfitID, err)
	}

	if err := s.userRepo.IncrementOutfitCount(ctx, callerID, -1); err != nil {
		s.logger.Warn("Failed to decrement outfit count", zap.String("userId", callerID), zap.Error(err))
	}

	if s.events != nil {
		if err := s.events.PublishOutfitDeleted(ctx, outfit); err != nil {
			s.logger.Error("Failed to publish outfit.deleted",
				zap.String("outfitId", outfitID), zap.Error(err))
		}
	}
	return nil
}
