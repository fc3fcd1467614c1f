package renderer

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mdbook-svg/pkg/cache"
	"github.com/matzehuels/mdbook-svg/pkg/diagram"
	"github.com/matzehuels/mdbook-svg/pkg/observability"
)

const keyTypeRender = "render"

// Cached serves renders from a cache and stores successful ones.
// Cache failures degrade to a plain render; errors are never stored.
type Cached struct {
	Next     Renderer
	Cache    cache.Cache
	Keyer    cache.Keyer
	Settings string // hash of every option that changes the output
	Logger   *log.Logger
}

// NewCached wraps next. A nil keyer selects cache.DefaultKeyer and a nil
// logger the default logger.
func NewCached(next Renderer, c cache.Cache, keyer cache.Keyer, settings string, logger *log.Logger) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Cached{Next: next, Cache: c, Keyer: keyer, Settings: settings, Logger: logger}
}

// Backend implements Renderer.
func (c *Cached) Backend() string { return c.Next.Backend() }

// Render implements Renderer.
// A disabled cache passes straight through without hashing or hooks.
func (c *Cached) Render(ctx context.Context, source string) (*diagram.Result, error) {
	if cache.Disabled(c.Cache) {
		return c.Next.Render(ctx, source)
	}
	key := c.Keyer.RenderKey(c.Next.Backend(), c.Settings, cache.Hash([]byte(source)))

	if data, ok, err := c.Cache.Get(ctx, key); err != nil {
		c.Logger.Debug("cache read failed", "backend", c.Backend(), "error", err)
	} else if ok {
		var r diagram.Result
		if err := json.Unmarshal(data, &r); err == nil {
			observability.Cache().OnCacheHit(ctx, keyTypeRender)
			return &r, nil
		}
		c.Logger.Debug("discarding corrupt cache entry", "key", key)
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeRender)

	r, err := c.Next.Render(ctx, source)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(r); err == nil {
		if err := c.Cache.Set(ctx, key, data, cache.TTLRender); err != nil {
			c.Logger.Debug("cache write failed", "backend", c.Backend(), "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeRender, len(data))
		}
	}
	return r, nil
}
