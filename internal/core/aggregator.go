package core

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"fitcheck-backend/internal/db"
	"fitcheck-backend/internal/models"
)

// Round2 rounds x to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ComputeOutfitStats returns the rating count and the mean rounded to two decimals (0 when empty).
func ComputeOutfitStats(values []int) (int, float64) {
	count := len(values)
	if count == 0 {
		return 0, 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return count, Round2(float64(sum) / float64(count))
}

// ComputeUserStats derives a user's stats from all of their outfits. The
// average is weighted by each outfit's rating count.
func ComputeUserStats(outfits []*models.Outfit) models.UserStats {
	var totalRatings int
	var weightedSum float64
	for _, o := range outfits {
		totalRatings += o.RatingCount
		weightedSum += o.AverageRating * float64(o.RatingCount)
	}
	stats := models.UserStats{
		OutfitCount:          len(outfits),
		TotalRatingsReceived: totalRatings,
	}
	if totalRatings > 0 {
		stats.AverageRatingReceived = Round2(weightedSum / float64(totalRatings))
	}
	return stats
}

// ratingAggregator implements the RatingAggregator interface.
type ratingAggregator struct {
	outfitRepo db.OutfitRepository
	ratingRepo db.RatingRepository
	userRepo   db.UserRepository
	logger     *zap.Logger
}

// NewRatingAggregator creates a new RatingAggregator instance.
func NewRatingAggregator(or db.OutfitRepository, rr db.RatingRepository, ur db.UserRepository, logger *zap.Logger) RatingAggregator {
	return &ratingAggregator{outfitRepo: or, ratingRepo: rr, userRepo: ur, logger: logger}
}

// RecomputeOutfit rewrites the outfit's ratingCount and averageRating from its
// current ratings, then recomputes the owner's stats. A missing outfit ends the
// run without error; any other failure is returned for redelivery.
func (a *ratingAggregator) RecomputeOutfit(ctx context.Context, outfitID string) error {
	values, err := a.ratingRepo.ListValues(ctx, outfitID, 0)
	if err != nil {
		return fmt.Errorf("failed to load ratings for outfit '%s': %w", outfitID, err)
	}
	count, average := ComputeOutfitStats(values)

	if err := a.outfitRepo.UpdateRatingStats(ctx, outfitID, count, average); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			a.logger.Info("Outfit gone before its stats could be written", zap.String("outfitId", outfitID))
			return nil
		}
		return fmt.Errorf("failed to write stats for outfit '%s': %w", outfitID, err)
	}

	outfit, err := a.outfitRepo.GetByID(ctx, outfitID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to re-read outfit '%s': %w", outfitID, err)
	}

	a.logger.Debug("Outfit stats recomputed",
		zap.String("outfitId", outfitID), zap.Int("ratingCount", count), zap.Float64("averageRating", average))

	return a.RecomputeUser(ctx, outfit.UserID)
}

// RecomputeUser rewrites the user's stats from the full set of their outfits.
// A missing user document is permanent and only logged.
func (a *ratingAggregator) RecomputeUser(ctx context.Context, userID string) error {
	if userID == "" {
		a.logger.Warn("Skipping user stats recompute for outfit without owner")
		return nil
	}
	outfits, err := a.outfitRepo.ListByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load outfits of user '%s': %w", userID, err)
	}
	stats := ComputeUserStats(outfits)

	if err := a.userRepo.UpdateRatingStats(ctx, userID, stats); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			a.logger.Warn("User profile missing, stats not written", zap.String("userId", userID))
			return nil
		}
		return fmt.Errorf("failed to write stats for user '%s': %w", userID, err)
	}

	a.logger.Debug("User stats recomputed",
		zap.String("userId", userID),
		zap.Int("totalRatingsReceived", stats.TotalRatingsReceived),
		zap.Float64("averageRatingReceived", stats.AverageRatingReceived))
	return nil
}
