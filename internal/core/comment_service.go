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

// commentService implements the CommentService interface.
type commentService struct {
	outfitRepo  db.OutfitRepository
	commentRepo db.CommentRepository
	userRepo    db.UserRepository
	logger      *zap.Logger
}

// NewCommentService creates a new CommentService instance.
func NewCommentService(or db.OutfitRepository, cr db.CommentRepository, ur db.UserRepository, logger *zap.Logger) CommentService {
	return &commentService{outfitRepo: or, commentRepo: cr, userRepo: ur, logger: logger}
}

func (s *commentService) requireOutfit(ctx context.Context, outfitID string) error {
	if !validDocumentID(outfitID) {
		return newError(codes.InvalidArgument, "outfitId is required.")
	}
	if _, err := s.outfitRepo.GetByID(ctx, outfitID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return newError(codes.NotFound, "Outfit not found.")
		}
		return fmt.Errorf("failed to load outfit '%s': %w", outfitID, err)
	}
	return nil
}

// AddComment stores a comment with the author's display fields and bumps commentCount.
func (s *commentService) AddComment(ctx context.Context, userID, outfitID, text string) (*models.Comment, error) {
	if err := validateCommentText(text); err != nil {
		return nil, err
	}
	if err := s.requireOutfit(ctx, outfitID); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, newError(codes.FailedPrecondition, "Initialize your profile before commenting.")
		}
		return nil, fmt.Errorf("failed to load author profile '%s': %w", userID, err)
	}

	comment := &models.Comment{
		UserID:        userID,
		Username:      author.Username,
		UserAvatarURL: author.AvatarURL,
		Text:          strings.TrimSpace(text),
	}
	if _, err := s.commentRepo.Add(ctx, outfitID, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	if err := s.outfitRepo.IncrementCommentCount(ctx, outfitID, 1); err != nil {
		s.logger.Warn("Failed to increment comment count", zap.String("outfitId", outfitID), zap.Error(err))
	}
	return comment, nil
}

// ListComments returns the outfit's comments, oldest first.
func (s *commentService) ListComments(ctx context.Context, outfitID string) ([]*models.Comment, error) {
	if err := s.requireOutfit(ctx, outfitID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListAll(ctx, outfitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment written by the caller.
func (s *commentService) DeleteComment(ctx context.Context, callerID, outfitID, commentID string) error {
	if !validDocumentID(outfitID) || !validDocumentID(commentID) {
		return newError(codes.InvalidArgument, "outfitId and commentId are required.")
	}
	comment, err := s.commentRepo.Get(ctx, outfitID, commentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return newError(codes.NotFound, "Comment not found.")
		}
		return fmt.Errorf("failed to load comment: %w", err)
	}
	if comment.UserID != callerID {
		return newError(codes.PermissionDenied, "Only the author can delete this comment.")
	}
	if err := s.commentRepo.Delete(ctx, outfitID, commentID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return newError(codes.NotFound, "Comment not found.")
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if err := s.outfitRepo.IncrementCommentCount(ctx, outfitID, -1); err != nil {
		s.logger.Warn("Failed to decrement comment count", zap.String("outfitId", outfitID), zap.Error(err))
	}
	return nil
}
