package cache

import (
	"context"
	"time"
)

// NullCache is the backend for cache = "none". Lookups miss and writes are
// dropped. Render caches check [Disabled] and skip key derivation and result
// encoding entirely when they are handed one.
type NullCache struct{}

// NewNullCache returns the disabled cache.
func NewNullCache() *NullCache { return &NullCache{} }

// Disabled reports whether c stores nothing, so preparing entries for it is
// wasted work. A nil cache counts as disabled.
func Disabled(c Cache) bool {
	if c == nil {
		return true
	}
	_, ok := c.(*NullCache)
	return ok
}

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
