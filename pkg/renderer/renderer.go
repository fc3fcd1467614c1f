// Package renderer turns diagram source into rendered results.
//
// Two kinds of backend sit behind the same [Renderer] interface:
//
//   - [Process] pipes the source through an external executable such as
//     Graphviz's dot and returns its stdout as a single board.
//   - [Native] calls an in-process engine through [native.Entry] and decodes
//     the buffer it hands back, which may describe a tree of boards.
//
// [Cached] decorates either kind with a content-addressed render cache.
package renderer

import (
	"context"

	"github.com/matzehuels/mdbook-svg/pkg/diagram"
)

// Renderer renders one diagram source.
// Implementations must be safe for concurrent use.
type Renderer interface {
	// Render returns the rendered diagram tree for source.
	Render(ctx context.Context, source string) (*diagram.Result, error)

	// Backend names the renderer for logs, metrics and cache keys.
	Backend() string
}

// Func adapts a function to a Renderer. Mostly useful in tests.
type Func struct {
	Name string
	Fn   func(ctx context.Context, source string) (*diagram.Result, error)
}

// Render implements Renderer.
func (f Func) Render(ctx context.Context, source string) (*diagram.Result, error) {
	return f.Fn(ctx, source)
}

// Backend implements Renderer.
func (f Func) Backend() string { return f.Name }
