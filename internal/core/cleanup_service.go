package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"fitcheck-backend/internal/db"
	"fitcheck-backend/internal/models"
	"fitcheck-backend/pkg/cache"
	"fitcheck-backend/pkg/storage"
)

// cleanupService implements the CleanupService interface.
type cleanupService struct {
	store          storage.ObjectStore
	suggestionRepo db.SuggestionRepository
	ratingRepo     db.RatingRepository
	commentRepo    db.CommentRepository
	aggregator     RatingAggregator
	cache          cache.Cache
	logger         *zap.Logger
}

// NewCleanupService creates a new CleanupService instance.
func NewCleanupService(
	store storage.ObjectStore,
	sr db.SuggestionRepository,
	rr db.RatingRepository,
	cr db.CommentRepository,
	aggregator RatingAggregator,
	c cache.Cache,
	logger *zap.Logger,
) CleanupService {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &cleanupService{
		store:          store,
		suggestionRepo: sr,
		ratingRepo:     rr,
		commentRepo:    cr,
		aggregator:     aggregator,
		cache:          c,
		logger:         logger,
	}
}

// HandleOutfitDeleted removes the image, the suggestion and the rating and
// comment sub-collections of a deleted outfit, then refreshes the owner's stats.
// Image and suggestion failures are logged and swallowed since the outfit is
// already gone. Sub-collection and stats failures are returned so the event is
// redelivered; every step is safe to repeat.
func (s *cleanupService) HandleOutfitDeleted(ctx context.Context, outfitID string, prior *models.Outfit) error {
	log := s.logger.With(zap.String("outfitId", outfitID))

	if prior != nil && prior.StoragePath != "" {
		if err := s.store.Delete(ctx, prior.StoragePath); err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				log.Debug("Outfit image already absent", zap.String("path", prior.StoragePath))
			} else {
				log.Warn("Failed to delete outfit image", zap.String("path", prior.StoragePath), zap.Error(err))
			}
		}
	}

	if err := s.suggestionRepo.Delete(ctx, outfitID); err != nil {
		log.Warn("Failed to delete AI suggestion", zap.Error(err))
	}
	if err := s.cache.Delete(ctx, SuggestionCacheKey(outfitID)); err != nil {
		log.Warn("Failed to invalidate cached suggestion", zap.Error(err))
	}

	if err := s.ratingRepo.DeleteAll(ctx, outfitID); err != nil {
		return fmt.Errorf("failed to delete ratings of outfit '%s': %w", outfitID, err)
	}
	if err := s.commentRepo.DeleteAll(ctx, outfitID); err != nil {
		return fmt.Errorf("failed to delete comments of outfit '%s': %w", outfitID, err)
	}

	if prior != nil && prior.UserID != "" {
		if err := s.aggregator.RecomputeUser(ctx, prior.UserID); err != nil {
			return fmt.Errorf("failed to refresh stats of user '%s': %w", prior.UserID, err)
		}
	}

	log.Info("Outfit cleanup complete")
	return nil
}
