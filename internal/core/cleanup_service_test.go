package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fitcheck-backend/internal/models"
)

type cleanupFixture struct {
	store       *fakeStore
	outfits     *fakeOutfitRepo
	ratings     *fakeRatingRepo
	comments    *fakeCommentRepo
	users       *fakeUserRepo
	suggestions *fakeSuggestionRepo
	cache       *fakeCache
	svc         CleanupService
}

func newCleanupFixture() *cleanupFixture {
	f := &cleanupFixture{
		store:       newFakeStore("outfits/owner/o1.jpg"),
		outfits:     newFakeOutfitRepo(),
		ratings:     newFakeRatingRepo(),
		comments:    newFakeCommentRepo(),
		users:       newFakeUserRepo(),
		suggestions: newFakeSuggestionRepo(time.Now),
		cache:       newFakeCache(),
	}
	agg := NewRatingAggregator(f.outfits, f.ratings, f.users, zap.NewNop())
	f.svc = NewCleanupService(f.store, f.suggestions, f.ratings, f.comments, agg, f.cache, zap.NewNop())
	return f
}

func TestHandleOutfitDeletedRemovesDependents(t *testing.T) {
	ctx := context.Background()
	f := newCleanupFixture()
	f.users.put(&models.UserProfile{UID: "owner", Stats: models.UserStats{OutfitCount: 2, TotalRatingsReceived: 5, AverageRatingReceived: 4}})
	f.outfits.put(&models.Outfit{ID: "o2", UserID: "owner", RatingCount: 2, AverageRating: 3})
	prior := &models.Outfit{ID: "o1", UserID: "owner", StoragePath: "outfits/owner/o1.jpg", RatingCount: 3, AverageRating: 4.67}

	_, _ = f.suggestions.Save(ctx, &models.AISuggestion{OutfitID: "o1"})
	_, _ = f.ratings.Upsert(ctx, "o1", "u1", 5)
	_, _ = f.comments.Add(ctx, "o1", &models.Comment{Text: "nice"})
	_ = f.cache.Set(ctx, SuggestionCacheKey("o1"), "{}", time.Minute)

	require.NoError(t, f.svc.HandleOutfitDeleted(ctx, "o1", prior))

	assert.False(t, f.store.has("outfits/owner/o1.jpg"))
	assert.False(t, f.suggestions.has("o1"))
	assert.Zero(t, f.ratings.count("o1"))
	remaining, _ := f.comments.ListAll(ctx, "o1")
	assert.Empty(t, remaining)
	_, cached, _ := f.cache.Get(ctx, SuggestionCacheKey("o1"))
	assert.False(t, cached)

	u, _ := f.users.GetByID(ctx, "owner")
	assert.Equal(t, models.UserStats{OutfitCount: 1, TotalRatingsReceived: 2, AverageRatingReceived: 3}, u.Stats)
}

func TestHandleOutfitDeletedTwiceSucceeds(t *testing.T) {
	ctx := context.Background()
	f := newCleanupFixture()
	f.users.put(&models.UserProfile{UID: "owner"})
	prior := &models.Outfit{ID: "o1", UserID: "owner", StoragePath: "outfits/owner/o1.jpg"}
	_, _ = f.suggestions.Save(ctx, &models.AISuggestion{OutfitID: "o1"})

	require.NoError(t, f.svc.HandleOutfitDeleted(ctx, "o1", prior))
	require.NoError(t, f.svc.HandleOutfitDeleted(ctx, "o1", prior))
	assert.False(t, f.store.has("outfits/owner/o1.jpg"))
	assert.False(t, f.suggestions.has("o1"))
}

func TestHandleOutfitDeletedSwallowsStorageAndSuggestionFailures(t *testing.T) {
	f := newCleanupFixture()
	f.store.failErr = errBoom
	f.suggestions.failDelete = errBoom

	err := f.svc.HandleOutfitDeleted(context.Background(), "o1",
		&models.Outfit{ID: "o1", UserID: "owner", StoragePath: "outfits/owner/o1.jpg"})
	assert.NoError(t, err)
}

func TestHandleOutfitDeletedWithoutPrior(t *testing.T) {
	f := newCleanupFixture()
	_, _ = f.suggestions.Save(context.Background(), &models.AISuggestion{OutfitID: "o1"})

	require.NoError(t, f.svc.HandleOutfitDeleted(context.Background(), "o1", nil))
	assert.False(t, f.suggestions.has("o1"))
	assert.True(t, f.store.has("outfits/owner/o1.jpg"))
}
