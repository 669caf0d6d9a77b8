package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte store with per-entry TTL. Entries expire only by
// elapsed time; nothing invalidates them when the underlying data
// changes. Callers that cache rendered responses accept that staleness
// window as a performance trade-off.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
