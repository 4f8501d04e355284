package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching services.
// Get returns found=false without error for a missing key.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// NoopCache never stores anything. It is used when Redis is not configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (NoopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (NoopCache) Delete(context.Context, string) error { return nil }
