package cache

import (
	"context"
	"fmt"
	"strings"
)

// Open returns the cache described by spec (see the package documentation).
// An empty spec or "none" disables caching. Network backends are fronted by
// an in-process LRU.
func Open(ctx context.Context, spec string) (Cache, error) {
	spec = strings.TrimSpace(spec)
	switch {
	case spec == "" || spec == "none":
		return NewNullCache(), nil
	case spec == "memory":
		return NewMemoryCache(DefaultMemoryEntries)
	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		c, err := NewRedisCache(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return NewTiered(c, DefaultMemoryEntries)
	case strings.HasPrefix(spec, "mongodb://"), strings.HasPrefix(spec, "mongodb+srv://"):
		c, err := NewMongoCache(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("mongo cache: %w", err)
		}
		return NewTiered(c, DefaultMemoryEntries)
	case strings.HasPrefix(spec, "file://"):
		return openFile(strings.TrimPrefix(spec, "file://"))
	case strings.Contains(spec, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, spec)
	default:
		return openFile(spec)
	}
}

func openFile(dir string) (Cache, error) {
	c, err := NewFileCache(dir)
	if err != nil {
		return nil, fmt.Errorf("file cache: %w", err)
	}
	return NewTiered(c, DefaultMemoryEntries)
}
