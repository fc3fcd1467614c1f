package pipeline

import (
	"context"
	stderrors "errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mdbook-svg/pkg/diagram"
	"github.com/matzehuels/mdbook-svg/pkg/observability"
	"github.com/matzehuels/mdbook-svg/pkg/renderer"
)

// render renders every job on at most opts.Workers goroutines. Once a block
// fails, blocks after it in book order are not rendered; blocks before it
// still are, so the error reported is always the one of the earliest
// failing block and does not depend on timing.
func (r *Runner) render(ctx context.Context, jobs []*job, opts Options, logger *log.Logger) error {
	var failed atomic.Int64
	failed.Store(math.MaxInt64)
	markFailed := func(i int64) {
		for {
			cur := failed.Load()
			if i >= cur || failed.CompareAndSwap(cur, i) {
				return
			}
		}
	}

	var rendered atomic.Int64
	progress := func(done int) {
		if opts.Progress != nil {
			opts.Progress(done, len(jobs))
		}
	}
	progress(0)

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i, j := range jobs {
		if int64(i) > failed.Load() || ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if int64(i) > failed.Load() {
				return nil
			}
			if j.err = r.renderJob(ctx, j, opts, logger); j.err != nil {
				markFailed(int64(i))
				return nil
			}
			progress(int(rendered.Add(1)))
			return nil
		})
	}
	_ = g.Wait()

	if err := firstError(jobs); err != nil {
		return err
	}
	return ctx.Err()
}

func (r *Runner) renderJob(ctx context.Context, j *job, opts Options, logger *log.Logger) error {
	backend := r.Renderer.Backend()
	hooks := observability.Render()
	start := time.Now()
	hooks.OnRenderStart(ctx, backend)

	views, err := r.renderViews(ctx, j, opts)
	hooks.OnRenderComplete(ctx, backend, len(views), time.Since(start), err)
	if err != nil {
		return j.fail(err)
	}
	j.views = views
	logger.Debug("rendered diagram",
		"chapter", j.doc.path,
		"name", j.name,
		"views", len(views),
		"duration", time.Since(start))
	return nil
}

func (r *Runner) renderViews(ctx context.Context, j *job, opts Options) ([]diagram.View, error) {
	res, err := r.Renderer.Render(ctx, j.block.Source)
	if err != nil {
		return nil, err
	}
	if res.Title == "" {
		res.Title = j.block.Label
	}
	if res.Title == "" {
		res.Title = j.name
	}
	j.result = res

	views, err := diagram.Flatten(res)
	if err != nil {
		return nil, err
	}
	if !opts.Theme.Empty() {
		for i := range views {
			views[i].Content = opts.Theme.Rewrite(views[i].Content)
		}
	}
	return views, nil
}

// fail wraps err with the location of j.
func (j *job) fail(err error) error {
	var pe *renderer.ParseError
	if stderrors.As(err, &pe) {
		err = pe.At(j.doc.path, j.block.Line)
	}
	return &ChapterError{Path: j.doc.path, Block: j.block.Index, Line: j.block.Line, Err: err}
}

// firstError returns the error of the earliest failed job. Cancellation of
// the run is reported only if no block failed on its own.
func firstError(jobs []*job) error {
	var cancelled error
	for _, j := range jobs {
		if j.err == nil {
			continue
		}
		if isCancellation(j.err) {
			if cancelled == nil {
				cancelled = j.err
			}
			continue
		}
		return j.err
	}
	return cancelled
}

func isCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
