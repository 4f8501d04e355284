// Package storage deletes uploaded outfit images from object storage.
package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by Delete when the object is already absent.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the subset of object storage the backend needs.
// Uploads are done by clients directly.
type ObjectStore interface {
	Delete(ctx context.Context, path string) error
}
