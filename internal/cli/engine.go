package cli

import (
	"context"

	"github.com/matzehuels/mdbook-svg/pkg/cache"
	"github.com/matzehuels/mdbook-svg/pkg/config"
	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/native/d2"
	"github.com/matzehuels/mdbook-svg/pkg/native/graphviz"
	"github.com/matzehuels/mdbook-svg/pkg/pipeline"
	"github.com/matzehuels/mdbook-svg/pkg/renderer"
	"github.com/matzehuels/mdbook-svg/pkg/splice"
	"github.com/matzehuels/mdbook-svg/pkg/theme"
)

// engine is a configured renderer together with what it holds open.
type engine struct {
	renderer.Renderer
	theme   *theme.Rewriter
	closers []func() error
}

// Close releases the cache and the native engine.
func (e *engine) Close() error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// newEngine builds the renderer cfg selects, wrapped in the render cache.
// cfg must be validated.
func (c *CLI) newEngine(ctx context.Context, cfg config.Config) (*engine, error) {
	rw, err := theme.New(cfg.Theme)
	if err != nil {
		return nil, err
	}
	e := &engine{theme: rw}

	var r renderer.Renderer
	switch cfg.Backend {
	case config.BackendProcess:
		r = renderer.NewProcess(cfg.Executable, cfg.Arguments, cfg.Timeout.Std())
	case config.BackendNative:
		r, err = c.nativeRenderer(ctx, cfg, rw, e)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "invalid backend: %q", cfg.Backend)
	}

	cc, err := c.openCache(ctx, cfg)
	if err != nil {
		_ = e.Close()
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open cache %q", cfg.Cache)
	}
	e.closers = append(e.closers, cc.Close)

	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.name()+":")
	e.Renderer = renderer.NewCached(r, cc, keyer, cache.HashJSON(cfg), c.Logger)
	c.Logger.Debug("renderer ready", "backend", r.Backend(), "cache", cfg.Cache)
	return e, nil
}

// nativeRenderer returns the in-process engine for the preset.
func (c *CLI) nativeRenderer(ctx context.Context, cfg config.Config, rw *theme.Rewriter, e *engine) (renderer.Renderer, error) {
	switch c.Preset.Name {
	case config.D2.Name:
		eng, err := d2.New(d2.Options{
			ThemeID:     cfg.D2.ThemeID,
			DarkThemeID: cfg.D2.DarkThemeID,
			Layout:      cfg.D2.Layout,
			Pad:         *cfg.D2.Pad,
			Sketch:      cfg.D2.Sketch,
			Theme:       rw,
		}, cfg.Workers)
		if err != nil {
			return nil, err
		}
		return renderer.NewNative("native:d2", eng), nil
	case config.Graphviz.Name:
		eng, err := graphviz.New(ctx)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, eng.Close)
		return renderer.NewNative("native:graphviz", eng), nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "no native engine for %q", c.Preset.Name)
	}
}

// pipelineOptions maps cfg onto one pipeline run.
func pipelineOptions(cfg config.Config, rw *theme.Rewriter, srcDir string) pipeline.Options {
	return pipeline.Options{
		Marker: cfg.InfoString,
		Splice: splice.Options{
			OutputToFile: cfg.OutputToFile,
			LinkToFile:   cfg.LinkToFile,
		},
		Theme:   rw,
		Workers: cfg.Workers,
		SrcDir:  srcDir,
	}
}
