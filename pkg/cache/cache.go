// Package cache stores rendered diagrams between builds.
//
// Rendering is the slow step of a book build: spawning dot or compiling and
// laying out a d2 diagram takes far longer than everything else combined.
// Rendered results are keyed by the renderer backend, a hash of every
// setting that affects the output, and a hash of the diagram source, so an
// unchanged diagram is never rendered twice.
//
// # Backends
//
// [Open] selects a backend from a URL-like spec:
//
//	none                      caching disabled (NullCache)
//	memory                    in-process LRU (MemoryCache)
//	file:///path or /path     one JSON file per entry (FileCache)
//	redis://host:6379/0       shared Redis (RedisCache)
//	mongodb://host/db         shared MongoDB collection (MongoCache)
//
// Persistent backends are fronted by a small LRU memo ([Tiered]) so repeated
// diagrams within one build skip the round trip.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// A missing or expired key is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// TTLRender is how long a rendered diagram stays cached.
const TTLRender = 30 * 24 * time.Hour

// Keyer derives cache keys.
type Keyer interface {
	// RenderKey returns the key for a render of source by backend.
	// settingsHash covers every option that changes the rendered output.
	RenderKey(backend, settingsHash, sourceHash string) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(backend, settingsHash, sourceHash string) string {
	return hashKey("render", backend, settingsHash, sourceHash)
}
