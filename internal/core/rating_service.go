package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"

	"fitcheck-backend/internal/db"
	"fitcheck-backend/internal/models"
)

// ratingService implements the RatingService interface.
type ratingService struct {
	outfitRepo db.OutfitRepository
	ratingRepo db.RatingRepository
	events     EventPublisher
	logger     *zap.Logger
}

// NewRatingService creates a new RatingService instance. events may be nil.
func NewRatingService(or db.OutfitRepository, rr db.RatingRepository, events EventPublisher, logger *zap.Logger) RatingService {
	return &ratingService{outfitRepo: or, ratingRepo: rr, events: events, logger: logger}
}

// SubmitRating records the caller's vote. The outfit aggregates are left to the
// aggregator, which the rating.written event triggers.
func (s *ratingService) SubmitRating(ctx context.Context, userID, outfitID string, value int) (*models.Rating, error) {
	if err := validateRating(value); err != nil {
		return nil, err
	}
	if !validDocumentID(outfitID) {
		return nil, newError(codes.InvalidArgument, "outfitId is required.")
	}
	if _, err := s.outfitRepo.GetByID(ctx, outfitID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, newError(codes.NotFound, "Outfit not found.")
		}
		return nil, fmt.Errorf("failed to load outfit '%s': %w", outfitID, err)
	}

	rating, err := s.ratingRepo.Upsert(ctx, outfitID, userID, value)
	if err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishRatingWritten(ctx, outfitID, userID); err != nil {
			s.logger.Error("Failed to publish rating.written",
				zap.String("outfitId", outfitID), zap.String("raterId", userID), zap.Error(err))
		}
	}
	return rating, nil
}

func (s *ratingService) GetUserRating(ctx context.Context, userID, outfitID string) (*models.Rating, error) {
	if !validDocumentID(outfitID) {
		return nil, newError(codes.InvalidArgument, "outfitId is required.")
	}
	rating, err := s.ratingRepo.Get(ctx, outfitID, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, newError(codes.NotFound, "You have not rated this outfit.")
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return rating, nil
}
