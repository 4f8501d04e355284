package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"

	"fitcheck-backend/internal/db"
	"fitcheck-backend/internal/models"
	"fitcheck-backend/pkg/cache"
)

const (
	// DefaultRateLimitWindow is the minimum time between two suggestions for one outfit.
	DefaultRateLimitWindow = time.Hour

	promptRatingLimit  = 20
	promptCommentLimit = 20
)

// SuggestionCacheKey is the cache key of an outfit's stored suggestion.
func SuggestionCacheKey(outfitID string) string {
	return "suggestion:" + outfitID
}

// RateLimitMessage is the user-facing text for a rate-limited request.
func RateLimitMessage(minutes int) string {
	plural := "s"
	if minutes == 1 {
		plural = ""
	}
	return fmt.Sprintf("Rate limit: please wait %d more minute%s before generating again.", minutes, plural)
}

// remainingMinutes rounds the time left in the window up to whole minutes.
func remainingMinutes(window, elapsed time.Duration) int {
	remaining := window - elapsed
	return int((remaining + time.Minute - 1) / time.Minute)
}

// SuggestionServiceConfig holds the collaborators of the suggestion gate.
type SuggestionServiceConfig struct {
	Outfits     db.OutfitRepository
	Ratings     db.RatingRepository
	Comments    db.CommentRepository
	Suggestions db.SuggestionRepository
	LLM         LLMClient
	Cache       cache.Cache
	CacheTTL    time.Duration
	Window      time.Duration
	Now         func() time.Time
}

// suggestionService implements the SuggestionService interface.
type suggestionService struct {
	outfitRepo     db.OutfitRepository
	ratingRepo     db.RatingRepository
	commentRepo    db.CommentRepository
	suggestionRepo db.SuggestionRepository
	llm            LLMClient
	cache          cache.Cache
	cacheTTL       time.Duration
	window         time.Duration
	now            func() time.Time
	logger         *zap.Logger
}

// NewSuggestionService creates a new SuggestionService instance.
func NewSuggestionService(cfg SuggestionServiceConfig, logger *zap.Logger) SuggestionService {
	if cfg.Window <= 0 {
		cfg.Window = DefaultRateLimitWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NoopCache{}
	}
	return &suggestionService{
		outfitRepo:     cfg.Outfits,
		ratingRepo:     cfg.Ratings,
		commentRepo:    cfg.Comments,
		suggestionRepo: cfg.Suggestions,
		llm:            cfg.LLM,
		cache:          cfg.Cache,
		cacheTTL:       cfg.CacheTTL,
		window:         cfg.Window,
		now:            cfg.Now,
		logger:         logger,
	}
}

// authorize runs the checks shared by generation and reads, in order:
// caller identity, outfit id shape, outfit existence, ownership.
func (s *suggestionService) authorize(ctx context.Context, callerID, outfitID string) (*models.Outfit, error) {
	if callerID == "" {
		return nil, newError(codes.Unauthenticated, "Must be signed in to generate suggestions.")
	}
	if !validDocumentID(outfitID) {
		return nil, newError(codes.InvalidArgument, "outfitId is required.")
	}
	outfit, err := s.outfitRepo.GetByID(ctx, outfitID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, newError(codes.NotFound, "Outfit not found.")
		}
		return nil, fmt.Errorf("failed to load outfit '%s': %w", outfitID, err)
	}
	if outfit.UserID != callerID {
		return nil, newError(codes.PermissionDenied, "Only the outfit owner can generate AI suggestions.")
	}
	return outfit, nil
}

// GenerateSuggestion validates the request, enforces the per-outfit rate limit
// and, when allowed, asks the LLM for stylist feedback and stores the result.
// Every rejection happens before the LLM is called or anything is written.
func (s *suggestionService) GenerateSuggestion(ctx context.Context, callerID, outfitID string) (string, error) {
	outfit, err := s.authorize(ctx, callerID, outfitID)
	if err != nil {
		return "", err
	}

	existing, err := s.suggestionRepo.Get(ctx, outfitID)
	switch {
	case err == nil:
		elapsed := s.now().Sub(existing.GeneratedAt)
		if elapsed < s.window {
			minutes := remainingMinutes(s.window, elapsed)
			return "", &Error{
				Code:              codes.ResourceExhausted,
				Message:           RateLimitMessage(minutes),
				RetryAfterMinutes: minutes,
			}
		}
	case errors.Is(err, db.ErrNotFound):
	default:
		return "", fmt.Errorf("failed to load existing suggestion for outfit '%s': %w", outfitID, err)
	}

	var ratings []int
	var comments []*models.Comment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ratings, err = s.ratingRepo.ListValues(gctx, outfitID, promptRatingLimit)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.commentRepo.ListRecent(gctx, outfitID, promptCommentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("failed to load feedback for outfit '%s': %w", outfitID, err)
	}

	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = c.Text
	}
	tags := outfit.Tags
	if tags == nil {
		tags = []string{}
	}
	prompt := BuildOutfitPrompt(PromptInput{
		Caption:       outfit.Caption,
		AverageRating: outfit.AverageRating,
		RatingCount:   outfit.RatingCount,
		Ratings:       ratings,
		Comments:      texts,
		Tags:          tags,
	})

	text, model, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("LLM call failed", zap.String("outfitId", outfitID), zap.Error(err))
		return "", wrapError(codes.Unavailable, "Failed to generate suggestion. Please try again.", err)
	}

	suggestion := &models.AISuggestion{
		OutfitID:                  outfitID,
		UserID:                    outfit.UserID,
		Suggestion:                text,
		PromptSnapshot:            prompt,
		ModelVersion:              model,
		RatingCountAtGeneration:   outfit.RatingCount,
		AverageRatingAtGeneration: outfit.AverageRating,
	}
	generatedAt, err := s.suggestionRepo.Save(ctx, suggestion)
	if err != nil {
		return "", fmt.Errorf("failed to save suggestion for outfit '%s': %w", outfitID, err)
	}
	if err := s.outfitRepo.SetAISuggestionGeneratedAt(ctx, outfitID, generatedAt); err != nil {
		return "", fmt.Errorf("failed to stamp outfit '%s' with generation time: %w", outfitID, err)
	}
	suggestion.GeneratedAt = generatedAt
	s.storeCached(ctx, suggestion)

	s.logger.Info("Suggestion generated",
		zap.String("outfitId", outfitID), zap.String("model", model), zap.Int("promptBytes", len(prompt)))
	return text, nil
}

// GetSuggestion returns the stored suggestion of an outfit owned by the caller.
func (s *suggestionService) GetSuggestion(ctx context.Context, callerID, outfitID string) (*models.AISuggestion, error) {
	if _, err := s.authorize(ctx, callerID, outfitID); err != nil {
		return nil, err
	}

	key := SuggestionCacheKey(outfitID)
	if raw, found, err := s.cache.Get(ctx, key); err == nil && found {
		var cached models.AISuggestion
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
		s.logger.Warn("Discarding undecodable cached suggestion", zap.String("outfitId", outfitID))
	}

	suggestion, err := s.suggestionRepo.Get(ctx, outfitID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, newError(codes.NotFound, "No suggestion has been generated for this outfit.")
		}
		return nil, fmt.Errorf("failed to load suggestion for outfit '%s': %w", outfitID, err)
	}
	s.storeCached(ctx, suggestion)
	return suggestion, nil
}

// storeCached is best effort; a cache failure never fails the request.
func (s *suggestionService) storeCached(ctx context.Context, suggestion *models.AISuggestion) {
	raw, err := json.Marshal(suggestion)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, SuggestionCacheKey(suggestion.OutfitID), raw, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache suggestion", zap.String("outfitId", suggestion.OutfitID), zap.Error(err))
	}
}
