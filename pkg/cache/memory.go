package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryEntries bounds the in-process cache.
const DefaultMemoryEntries = 512

// MemoryCache is an in-process LRU cache.
type MemoryCache struct {
	entries *lru.Cache[string, cacheEntry]
}

// NewMemoryCache creates an LRU cache holding at most size entries.
// A non-positive size selects DefaultMemoryEntries.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: entries}, nil
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if entry.expired(time.Now()) {
		c.entries.Remove(key)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set stores a value in the cache.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.entries.Add(key, newEntry(data, ttl))
	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int { return c.entries.Len() }

// Close drops all entries.
func (c *MemoryCache) Close() error {
	c.entries.Purge()
	return nil
}

var _ Cache = (*MemoryCache)(nil)

// Tiered serves reads from a memory front before consulting a slower
// backend, and writes through to both.
type Tiered struct {
	front *MemoryCache
	back  Cache
}

// NewTiered fronts back with an LRU of size entries.
func NewTiered(back Cache, size int) (*Tiered, error) {
	front, err := NewMemoryCache(size)
	if err != nil {
		return nil, err
	}
	return &Tiered{front: front, back: back}, nil
}

// Get retrieves a value, promoting backend hits into the front.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok, _ := t.front.Get(ctx, key); ok {
		return data, true, nil
	}
	data, ok, err := t.back.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = t.front.Set(ctx, key, data, 0)
	return data, true, nil
}

// Set writes to the backend and then the front.
func (t *Tiered) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := t.back.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	return t.front.Set(ctx, key, data, ttl)
}

// Delete removes key from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) error {
	_ = t.front.Delete(ctx, key)
	return t.back.Delete(ctx, key)
}

// Backend returns the slower tier.
func (t *Tiered) Backend() Cache { return t.back }

// Close closes both tiers.
func (t *Tiered) Close() error {
	_ = t.front.Close()
	return t.back.Close()
}

var _ Cache = (*Tiered)(nil)
