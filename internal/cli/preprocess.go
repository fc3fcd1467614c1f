package cli

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/mdbook-svg/pkg/assets"
	"github.com/matzehuels/mdbook-svg/pkg/book"
	"github.com/matzehuels/mdbook-svg/pkg/buildinfo"
	"github.com/matzehuels/mdbook-svg/pkg/config"
	"github.com/matzehuels/mdbook-svg/pkg/pipeline"
)

// linksPreprocessor is mdBook's built-in preprocessor that expands
// {{#include}}; diagrams pulled in by it are only seen when running after it.
const linksPreprocessor = "links"

// runPreprocess reads [context, book] from c.In, renders every diagram and
// writes the book to c.Out. Nothing is written to c.Out on failure, so
// mdBook never receives a half-processed book.
func (c *CLI) runPreprocess(ctx context.Context) error {
	bookCtx, b, err := book.Read(c.In)
	if err != nil {
		return err
	}
	if bookCtx.VersionMismatch() {
		c.Logger.Warn("mdBook version differs from the supported release line",
			"preprocessor", c.name(),
			"supported", book.SupportedVersion,
			"mdbook", bookCtx.MdbookVersion)
	}

	raw, err := config.Decode(bookCtx.Preprocessor(c.Preset.Name))
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig(raw)
	if err != nil {
		return err
	}
	if !cfg.HasOrderingHint(linksPreprocessor) {
		c.Logger.Warnf("[preprocessor.%s] should run after %q, add: after = [%q]",
			c.Preset.Name, linksPreprocessor, linksPreprocessor)
	}

	eng, err := c.newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	opts := pipelineOptions(cfg, eng.theme, bookCtx.SrcDir())
	opts.Logger = c.Logger
	if _, err := pipeline.NewRunner(eng, c.Logger).Run(ctx, b.Chapters(), opts); err != nil {
		return err
	}

	if cfg.CopyCSS.Enabled() {
		if err := c.copyCSS(filepath.Join(bookCtx.Root, cfg.CopyCSS.Path)); err != nil {
			return err
		}
	}
	return book.Write(c.Out, b)
}

// copyCSS writes the stylesheet to path unless it is up to date.
func (c *CLI) copyCSS(path string) error {
	written, err := assets.WriteCSS(path, buildinfo.AssetVersion())
	if err != nil {
		return err
	}
	if written {
		c.Logger.Info("wrote stylesheet", "path", path)
	} else {
		c.Logger.Debug("stylesheet up to date", "path", path)
	}
	return nil
}
