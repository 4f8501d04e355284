package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"

	"fitcheck-backend/internal/models"
)

func TestOutfitServiceCreateAndDelete(t *testing.T) {
	ctx := context.Background()
	outfits, users, events := newFakeOutfitRepo(), newFakeUserRepo(), &fakePublisher{}
	users.put(&models.UserProfile{UID: "owner", Username: "ana"})
	svc := NewOutfitService(outfits, users, events, zap.NewNop())

	o, err := svc.CreateOutfit(ctx, "owner", models.CreateOutfitRequest{
		ImageURL: "https://img", StoragePath: "outfits/owner/1.jpg", Caption: "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana", o.Username)
	assert.Equal(t, 0, o.RatingCount)
	assert.Equal(t, []string{}, o.Tags)
	u, _ := users.GetByID(ctx, "owner")
	assert.Equal(t, 1, u.Stats.OutfitCount)

	err = svc.DeleteOutfit(ctx, "intruder", o.ID)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	require.NoError(t, svc.DeleteOutfit(ctx, "owner", o.ID))
	assert.Nil(t, outfits.get(o.ID))
	u, _ = users.GetByID(ctx, "owner")
	assert.Equal(t, 0, u.Stats.OutfitCount)
	require.Len(t, events.outfitDeleted, 1)
	assert.Equal(t, "outfits/owner/1.jpg", events.outfitDeleted[0].StoragePath)

	err = svc.DeleteOutfit(ctx, "owner", o.ID)
	assert.Equal(t, codes.NotFound, CodeOf(err))
}

func TestOutfitServiceValidation(t *testing.T) {
	users := newFakeUserRepo()
	users.put(&models.UserProfile{UID: "owner"})
	svc := NewOutfitService(newFakeOutfitRepo(), users, nil, zap.NewNop())

	tests := []struct {
		name string
		req  models.CreateOutfitRequest
	}{
		{"missing image", models.CreateOutfitRequest{StoragePath: "p"}},
		{"missing path", models.CreateOutfitRequest{ImageURL: "u"}},
		{"caption too long", models.CreateOutfitRequest{ImageURL: "u", StoragePath: "p", Caption: strings.Repeat("x", MaxCaptionLength+1)}},
		{"too many tags", models.CreateOutfitRequest{ImageURL: "u", StoragePath: "p", Tags: make([]string, MaxTags+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOutfit(context.Background(), "owner", tt.req)
			assert.Equal(t, codes.InvalidArgument, CodeOf(err))
		})
	}
}

func TestOutfitServiceRequiresProfile(t *testing.T) {
	svc := NewOutfitService(newFakeOutfitRepo(), newFakeUserRepo(), nil, zap.NewNop())
	_, err := svc.CreateOutfit(context.Background(), "nobody", models.CreateOutfitRequest{ImageURL: "u", StoragePath: "p"})
	assert.Equal(t, codes.FailedPrecondition, CodeOf(err))
}

func TestOutfitServiceListUserOutfitsNewestFirst(t *testing.T) {
	ctx := context.Background()
	outfits, users := newFakeOutfitRepo(), newFakeUserRepo()
	users.put(&models.UserProfile{UID: "owner"})
	svc := NewOutfitService(outfits, users, nil, zap.NewNop())
	for i := 0; i < 3; i++ {
		_, err := svc.CreateOutfit(ctx, "owner", models.CreateOutfitRequest{ImageURL: "u", StoragePath: "p"})
		require.NoError(t, err)
	}

	list, err := svc.ListUserOutfits(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "outfit-3", list[0].ID)
	assert.Equal(t, "outfit-1", list[2].ID)
}

func TestRatingServiceSubmit(t *testing.T) {
	ctx := context.Background()
	outfits, ratings, events := newFakeOutfitRepo(), newFakeRatingRepo(), &fakePublisher{}
	outfits.put(&models.Outfit{ID: "o1", UserID: "owner"})
	svc := NewRatingService(outfits, ratings, events, zap.NewNop())

	first, err := svc.SubmitRating(ctx, "u1", "o1", 5)
	require.NoError(t, err)
	second, err := svc.SubmitRating(ctx, "u1", "o1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Value)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, []string{"o1", "o1"}, events.ratingWritten)

	got, err := svc.GetUserRating(ctx, "u1", "o1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Value)

	_, err = svc.GetUserRating(ctx, "u2", "o1")
	assert.Equal(t, codes.NotFound, CodeOf(err))
}

func TestRatingServiceRejectsBadInput(t *testing.T) {
	outfits := newFakeOutfitRepo()
	outfits.put(&models.Outfit{ID: "o1"})
	svc := NewRatingService(outfits, newFakeRatingRepo(), nil, zap.NewNop())

	for _, v := range []int{0, -1, 6} {
		_, err := svc.SubmitRating(context.Background(), "u1", "o1", v)
		assert.Equal(t, codes.InvalidArgument, CodeOf(err), "value %d", v)
	}
	_, err := svc.SubmitRating(context.Background(), "u1", "missing", 4)
	assert.Equal(t, codes.NotFound, CodeOf(err))
}

func TestCommentServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	outfits, comments, users := newFakeOutfitRepo(), newFakeCommentRepo(), newFakeUserRepo()
	outfits.put(&models.Outfit{ID: "o1", UserID: "owner"})
	users.put(&models.UserProfile{UID: "u1", Username: "bo"})
	svc := NewCommentService(outfits, comments, users, zap.NewNop())

	c, err := svc.AddComment(ctx, "u1", "o1", "  great fit  ")
	require.NoError(t, err)
	assert.Equal(t, "great fit", c.Text)
	assert.Equal(t, "bo", c.Username)
	assert.Equal(t, 1, outfits.get("o1").CommentCount)

	list, err := svc.ListComments(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = svc.DeleteComment(ctx, "owner", "o1", c.ID)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	require.NoError(t, svc.DeleteComment(ctx, "u1", "o1", c.ID))
	assert.Equal(t, 0, outfits.get("o1").CommentCount)

	_, err = svc.AddComment(ctx, "u1", "o1", "   ")
	assert.Equal(t, codes.InvalidArgument, CodeOf(err))
	_, err = svc.AddComment(ctx, "u1", "o1", strings.Repeat("a", MaxCommentLength+1))
	assert.Equal(t, codes.InvalidArgument, CodeOf(err))
}

func TestUserServiceGetOrCreate(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	svc := NewUserService(users, zap.NewNop())

	u, created, err := svc.GetOrCreate(ctx, "uid1", models.InitializeProfileRequest{Username: "Style_Fan"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "style_fan", u.Username)
	assert.Equal(t, "style_fan", u.DisplayName)
	assert.Equal(t, models.UserStats{}, u.Stats)

	again, created, err := svc.GetOrCreate(ctx, "uid1", models.InitializeProfileRequest{Username: "other"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "style_fan", again.Username)

	for _, bad := range []string{"", "ab", "has space", strings.Repeat("a", MaxUsername+1), "dash-name"} {
		_, _, err := svc.GetOrCreate(ctx, "uid-"+bad, models.InitializeProfileRequest{Username: bad})
		assert.Equal(t, codes.InvalidArgument, CodeOf(err), "username %q", bad)
	}

	_, err = svc.GetByID(ctx, "nobody")
	assert.Equal(t, codes.NotFound, CodeOf(err))
}

func TestErrorMatchesByCode(t *testing.T) {
	err := newError(codes.NotFound, "Outfit not found.")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrPermissionDenied))
	assert.Equal(t, "Outfit not found.", err.Error())
	assert.Equal(t, codes.Internal, CodeOf(errBoom))
	assert.Equal(t, codes.OK, CodeOf(nil))
}
