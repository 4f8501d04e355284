package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore deletes objects from an S3 compatible bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStoreConfig contains options for creating a new MinIOStore.
type NewMinIOStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinIOStore creates the client and verifies the bucket exists.
func NewMinIOStore(ctx context.Context, cfg NewMinIOStoreConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}
	ok, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to minio server: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("minio bucket '%s' does not exist", cfg.Bucket)
	}
	return &MinIOStore{client: client, bucket: cfg.Bucket}, nil
}

// Delete removes the object. S3 RemoveObject is silent on missing keys, so
// existence is checked first to report ErrObjectNotFound.
func (s *MinIOStore) Delete(ctx context.Context, path string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return fmt.Errorf("object '%s': %w", path, ErrObjectNotFound)
		}
		return fmt.Errorf("failed to stat object '%s': %w", path, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object '%s': %w", path, err)
	}
	return nil
}
