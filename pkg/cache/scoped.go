package cache

// ScopedKeyer wraps a Keyer with a prefix so several preprocessors can share
// one cache backend without their entries colliding.
//
// Example usage:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "mdbook-d2:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(backend, settingsHash, sourceHash string) string {
	return k.prefix + k.inner.RenderKey(backend, settingsHash, sourceHash)
}
