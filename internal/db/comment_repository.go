package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fitcheck-backend/internal/models"
)

// firestoreCommentRepository stores comments at outfits/{outfitId}/comments/{commentId}.
type firestoreCommentRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreCommentRepository creates a new instance of firestoreCommentRepository.
func NewFirestoreCommentRepository(client *firestore.Client, logger *zap.Logger) CommentRepository {
	if client == nil {
		logger.Fatal("Firestore client is not initialized for CommentRepository")
	}
	return &firestoreCommentRepository{client: client, logger: logger}
}

func (r *firestoreCommentRepository) comments(outfitID string) *firestore.CollectionRef {
	return r.client.Collection(OutfitsCollection).Doc(outfitID).Collection(CommentsCollection)
}

// Add creates a comment with an auto-generated ID. CreatedAt is set by the server.
func (r *firestoreCommentRepository) Add(ctx context.Context, outfitID string, comment *models.Comment) (string, error) {
	if outfitID == "" {
		return "", errors.New("outfitID cannot be empty for Add operation")
	}
	docRef := r.comments(outfitID).NewDoc()
	comment.ID = docRef.ID
	if _, err := docRef.Create(ctx, comment); err != nil {
		return "", fmt.Errorf("failed to add comment to outfit '%s': %w", outfitID, err)
	}
	return docRef.ID, nil
}

func (r *firestoreCommentRepository) Get(ctx context.Context, outfitID, commentID string) (*models.Comment, error) {
	if outfitID == "" || commentID == "" {
		return nil, errors.New("outfitID and commentID cannot be empty for Get operation")
	}
	docSnap, err := r.comments(outfitID).Doc(commentID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("comment '%s' on outfit '%s' not found: %w", commentID, outfitID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get comment '%s' on outfit '%s': %w", commentID, outfitID, err)
	}
	return decodeComment(docSnap)
}

func (r *firestoreCommentRepository) Delete(ctx context.Context, outfitID, commentID string) error {
	if outfitID == "" || commentID == "" {
		return errors.New("outfitID and commentID cannot be empty for Delete operation")
	}
	if _, err := r.comments(outfitID).Doc(commentID).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("comment '%s' on outfit '%s' not found for deletion: %w", commentID, outfitID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete comment '%s' on outfit '%s': %w", commentID, outfitID, err)
	}
	return nil
}

func (r *firestoreCommentRepository) ListRecent(ctx context.Context, outfitID string, limit int) ([]*models.Comment, error) {
	query := r.comments(outfitID).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.collect(query.Documents(ctx), outfitID)
}

func (r *firestoreCommentRepository) ListAll(ctx context.Context, outfitID string) ([]*models.Comment, error) {
	return r.collect(r.comments(outfitID).OrderBy("createdAt", firestore.Asc).Documents(ctx), outfitID)
}

// DeleteAll removes every comment under the outfit.
func (r *firestoreCommentRepository) DeleteAll(ctx context.Context, outfitID string) error {
	if outfitID == "" {
		return errors.New("outfitID cannot be empty for DeleteAll operation")
	}
	if err := deleteCollection(ctx, r.client, r.comments(outfitID)); err != nil {
		return fmt.Errorf("failed to delete comments for outfit '%s': %w", outfitID, err)
	}
	return nil
}

func (r *firestoreCommentRepository) collect(iter *firestore.DocumentIterator, outfitID string) ([]*models.Comment, error) {
	defer iter.Stop()

	comments := []*models.Comment{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate comments for outfit '%s': %w", outfitID, err)
		}
		comment, err := decodeComment(doc)
		if err != nil {
			r.logger.Error("Error decoding comment data, skipping", zap.String("outfitId", outfitID), zap.Error(err))
			continue
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

func decodeComment(doc *firestore.DocumentSnapshot) (*models.Comment, error) {
	var comment models.Comment
	if err := doc.DataTo(&comment); err != nil {
		return nil, fmt.Errorf("failed to decode comment data for ID '%s': %w", doc.Ref.ID, err)
	}
	comment.ID = doc.Ref.ID
	return &comment, nil
}
