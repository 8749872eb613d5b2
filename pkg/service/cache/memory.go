package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vendops-lab/vigil/pkg/utils/clock"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache for tests and single-instance deployments.
// Expired entries are dropped lazily on access; there is no background
// sweeper, so the owner's scope bounds the cache lifetime.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

var _ Cache = &Memory{}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*memoryEntry),
	}
}

func (c *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || clock.Now(ctx).After(entry.expiresAt) {
		return nil, ErrCacheMiss
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

func (c *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &memoryEntry{
		value:     valueCopy,
		expiresAt: clock.Now(ctx).Add(ttl),
	}
	return nil
}

func (c *Memory) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}
