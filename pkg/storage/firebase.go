package storage

import (
	"context"
	"errors"
	"fmt"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
)

// FirebaseStore deletes objects from the project's Firebase Storage bucket.
type FirebaseStore struct {
	bucket *gcs.BucketHandle
}

// NewFirebaseStore opens the named bucket, or the app's default bucket when name is empty.
func NewFirebaseStore(ctx context.Context, app *firebase.App, name string) (*FirebaseStore, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Storage: %w", err)
	}
	var bucket *gcs.BucketHandle
	if name == "" {
		bucket, err = client.DefaultBucket()
	} else {
		bucket, err = client.Bucket(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open storage bucket: %w", err)
	}
	return &FirebaseStore{bucket: bucket}, nil
}

func (s *FirebaseStore) Delete(ctx context.Context, path string) error {
	if err := s.bucket.Object(path).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return fmt.Errorf("object '%s': %w", path, ErrObjectNotFound)
		}
		return fmt.Errorf("failed to delete object '%s': %w", path, err)
	}
	return nil
}
