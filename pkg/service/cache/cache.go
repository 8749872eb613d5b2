package cache

import (
	"context"
	"time"
)

// Cache is a TTL key-value store used to keep registry lookups off the hot
// path. Implementations must be safe for concurrent use. Expiry is decided
// against the context-injected clock so tests can freeze time, and entries
// can be invalidated explicitly instead of waiting for the TTL.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete invalidates a key explicitly.
	Delete(ctx context.Context, key string) error
}

type cacheError string

func (e cacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss cacheError = "cache miss"
)
