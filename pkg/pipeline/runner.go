package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/mdbook-svg/pkg/book"
	"github.com/matzehuels/mdbook-svg/pkg/observability"
	"github.com/matzehuels/mdbook-svg/pkg/renderer"
)

// Runner executes the pipeline with one renderer.
//
// The Runner holds no per-run state; each Run gets its own name table, so
// one Runner can serve several runs, concurrently if need be.
type Runner struct {
	Renderer renderer.Renderer
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil logger selects the default logger.
func NewRunner(r renderer.Renderer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Renderer: r, Logger: logger}
}

// Run processes chapters in the given order, which must be book order.
// Draft chapters are skipped. On error no chapter is modified and no file
// is written; the error is a *ChapterError for the first failing chapter
// in book order.
func (r *Runner) Run(ctx context.Context, chapters []*book.Chapter, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{BuildID: uuid.NewString()}
	logger := opts.Logger.With("build", result.BuildID)
	start := time.Now()
	observability.Render().OnBuildStart(ctx, len(chapters))

	err := r.run(ctx, chapters, opts, logger, result)
	observability.Render().OnBuildComplete(ctx, result.Stats.Blocks, time.Since(start), err)
	if err != nil {
		logger.Error("build failed", "error", err)
		return nil, err
	}

	logger.Info("build complete",
		"chapters", result.Stats.Chapters,
		"changed", result.Stats.Changed,
		"diagrams", result.Stats.Blocks,
		"views", result.Stats.Views,
		"files", len(result.Files),
		"duration", time.Since(start))
	return result, nil
}

func (r *Runner) run(ctx context.Context, chapters []*book.Chapter, opts Options, logger *log.Logger, result *Result) error {
	// Stage 1: Discover
	t := time.Now()
	d, err := discover(chapters, opts.Marker)
	if err != nil {
		return err
	}
	result.Stats.Chapters = len(d.docs)
	result.Stats.Blocks = len(d.jobs)
	result.Stats.DiscoverTime = time.Since(t)
	logger.Debug("discovered diagrams",
		"chapters", len(d.docs),
		"diagrams", len(d.jobs),
		"duration", result.Stats.DiscoverTime)
	if len(d.jobs) == 0 {
		return nil
	}

	// Stage 2: Render
	t = time.Now()
	if err := r.render(ctx, d.jobs, opts, logger); err != nil {
		return err
	}
	result.Stats.RenderTime = time.Since(t)
	logger.Info("rendered diagrams",
		"backend", r.Renderer.Backend(),
		"diagrams", len(d.jobs),
		"workers", opts.Workers,
		"duration", result.Stats.RenderTime)

	// Stage 3: Name
	result.Stats.Views = d.nameViews()

	// Stage 4: Splice
	t = time.Now()
	files, changed, err := d.splice(opts)
	if err != nil {
		return err
	}
	result.Files = files
	result.Stats.Changed = changed
	result.Stats.SpliceTime = time.Since(t)
	return nil
}
