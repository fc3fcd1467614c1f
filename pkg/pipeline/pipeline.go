// Package pipeline runs the diagram preprocessing pass over a book.
//
// A run rewrites every chapter whose text contains diagram blocks. Each
// block is rendered, its boards are flattened into views, and the block is
// replaced by inline SVG markup or by references to SVG files. All other
// bytes of a chapter are left as they were.
//
// # Architecture
//
// The pipeline runs in four stages:
//
//  1. Discover: extract blocks from every chapter and allocate block names,
//     chapters in book order, blocks in document order (sequential)
//  2. Render: render all blocks on a bounded worker pool (concurrent)
//  3. Name: allocate view names, again in book order (sequential)
//  4. Splice: rewrite the chapters and write SVG files
//
// Names depend only on book order, never on render timing, so two runs over
// the same book produce the same names and files. No chapter is modified
// and no file is written unless every block in the book rendered.
//
// # Usage
//
//	runner := pipeline.NewRunner(r, logger)
//	result, err := runner.Run(ctx, book.Chapters(), pipeline.Options{
//	    Marker: "dot process",
//	    SrcDir: bookCtx.SrcDir(),
//	})
package pipeline

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/splice"
	"github.com/matzehuels/mdbook-svg/pkg/theme"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configure one run.
type Options struct {
	// Marker selects diagram fences by their info string.
	Marker string

	// Splice selects inline or file output.
	Splice splice.Options

	// Theme rewrites placeholder colors in rendered SVG. Optional.
	Theme *theme.Rewriter

	// Workers bounds concurrent renders. Zero means GOMAXPROCS.
	Workers int

	// SrcDir is the book source directory files are written below.
	// Required when Splice.OutputToFile is set.
	SrcDir string

	// DryRun skips writing files.
	DryRun bool

	// Logger receives progress. Nil discards.
	Logger *log.Logger

	// Progress, when set, is called with 0 once the blocks are known and
	// again after each block renders. Calls come from render workers.
	Progress func(done, total int)

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateMarker(o.Marker); err != nil {
		return err
	}
	if o.Splice.OutputToFile && o.SrcDir == "" && !o.DryRun {
		return errors.New(errors.ErrCodeInvalidConfig, "output-to-file needs a source directory")
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result summarizes a run.
type Result struct {
	// BuildID identifies the run in logs.
	BuildID string

	// Files are the SVG files written, relative to SrcDir.
	Files []string

	Stats Stats
}

// Stats contains run statistics.
type Stats struct {
	Chapters     int // chapters scanned
	Changed      int // chapters rewritten
	Blocks       int
	Views        int
	DiscoverTime time.Duration
	RenderTime   time.Duration
	SpliceTime   time.Duration
}

// =============================================================================
// Errors
// =============================================================================

// ChapterError locates a failure in the book. Block is the index of the
// failing block within the chapter, or -1 when the chapter as a whole
// could not be processed.
type ChapterError struct {
	Path  string
	Block int
	Line  int
	Err   error
}

func (e *ChapterError) Error() string {
	if e.Block < 0 {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: diagram %d (line %d): %v", e.Path, e.Block, e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *ChapterError) Unwrap() error { return e.Err }

// Code implements errors.Coder.
func (e *ChapterError) Code() errors.Code { return errors.GetCode(e.Err) }
