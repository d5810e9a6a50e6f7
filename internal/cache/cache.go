package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key is absent.
var ErrMiss = errors.New("cache miss")

// Cache is a narrow key-value interface over the cache backend. Callers treat
// any error other than ErrMiss as the cache being unavailable and fall back
// to their source of truth.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
