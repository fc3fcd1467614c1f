// Package d2 runs the D2 compiler, layout engines and SVG renderer in
// process and exposes them as a [native.Entry].
//
// A D2 source can describe several boards: layers, scenarios and steps,
// nested to any depth. Every board with its own content is rendered to a
// separate SVG and the whole tree is returned, so the preprocessor can show
// the boards as tabs.
package d2

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"oss.terrastruct.com/d2/d2graph"
	"oss.terrastruct.com/d2/d2layouts/d2dagrelayout"
	"oss.terrastruct.com/d2/d2layouts/d2elklayout"
	"oss.terrastruct.com/d2/d2lib"
	"oss.terrastruct.com/d2/d2parser"
	"oss.terrastruct.com/d2/d2renderers/d2svg"
	"oss.terrastruct.com/d2/d2target"
	d2log "oss.terrastruct.com/d2/lib/log"
	"oss.terrastruct.com/d2/lib/textmeasure"
	"oss.terrastruct.com/util-go/go2"

	"github.com/matzehuels/mdbook-svg/pkg/diagram"
	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/native"
	"github.com/matzehuels/mdbook-svg/pkg/theme"
)

// Layout engines.
const (
	LayoutDagre = "dagre"
	LayoutELK   = "elk"
)

// Defaults.
const (
	DefaultThemeID int64 = 0
	DefaultPad     int64 = 100
	DefaultLayout        = LayoutDagre
)

// Options control compilation and rendering.
type Options struct {
	ThemeID     int64
	DarkThemeID *int64
	Layout      string
	Pad         int64
	Sketch      bool

	// Theme maps d2 theme slots (N1..N7, B1..B6, AA2, AA4, AA5, AB4, AB5) to
	// placeholder colors that are later rewritten to theme references.
	Theme *theme.Rewriter
}

// Engine renders D2 diagrams. It is safe for concurrent use.
type Engine struct {
	opts      Options
	overrides *d2target.ThemeOverrides
	rulers    chan *textmeasure.Ruler
	logCtx    context.Context
}

// New returns an engine that keeps up to idle text rulers between calls.
func New(opts Options, idle int) (*Engine, error) {
	if opts.Layout == "" {
		opts.Layout = DefaultLayout
	}
	if _, err := layoutFor(opts.Layout); err != nil {
		return nil, err
	}
	if idle < 1 {
		idle = 1
	}
	e := &Engine{
		opts:      opts,
		overrides: Overrides(opts.Theme),
		rulers:    make(chan *textmeasure.Ruler, idle),
		logCtx:    d2log.With(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil))),
	}

	// Build one ruler up front so a broken font setup fails at startup.
	r, err := textmeasure.NewRuler()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "initialize d2 text ruler")
	}
	e.rulers <- r
	return e, nil
}

func layoutFor(name string) (d2graph.LayoutGraph, error) {
	switch name {
	case LayoutDagre:
		return d2dagrelayout.DefaultLayout, nil
	case LayoutELK:
		return d2elklayout.DefaultLayout, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown d2 layout %q (want %s or %s)", name, LayoutDagre, LayoutELK)
	}
}

// textmeasure.Ruler is not safe for concurrent use, so each call borrows one.
func (e *Engine) acquire() (*textmeasure.Ruler, error) {
	select {
	case r := <-e.rulers:
		return r, nil
	default:
		return textmeasure.NewRuler()
	}
}

func (e *Engine) release(r *textmeasure.Ruler) {
	select {
	case e.rulers <- r:
	default:
	}
}

// Call implements native.Entry.
func (e *Engine) Call(source string) (buf *native.Buffer) {
	defer func() {
		if p := recover(); p != nil {
			buf = native.EncodeFailure(native.Failure{
				Message: fmt.Sprintf("d2 panicked: %v", p),
				Code:    string(errors.ErrCodeInternal),
			})
		}
	}()

	r, err := e.Render(source)
	if err != nil {
		return native.EncodeFailure(failure(err))
	}
	return native.Encode(r)
}

// Render compiles, lays out and renders source.
func (e *Engine) Render(source string) (*diagram.Result, error) {
	ruler, err := e.acquire()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "initialize d2 text ruler")
	}
	defer e.release(ruler)

	compileOpts := &d2lib.CompileOptions{
		Layout: go2.Pointer(e.opts.Layout),
		Ruler:  ruler,
	}
	compileOpts.LayoutResolver = func(engine string) (d2graph.LayoutGraph, error) {
		return layoutFor(engine)
	}
	renderOpts := e.renderOpts()

	target, graph, err := d2lib.Compile(e.logCtx, source, compileOpts, renderOpts)
	if err != nil {
		return nil, err
	}
	if err := diagram.Match(targetTree{target}, graphTree{graph}); err != nil {
		return nil, err
	}
	return e.renderBoard(target, renderOpts)
}

func (e *Engine) renderOpts() *d2svg.RenderOpts {
	opts := &d2svg.RenderOpts{
		ThemeID:     go2.Pointer(e.opts.ThemeID),
		DarkThemeID: e.opts.DarkThemeID,
		Pad:         go2.Pointer(e.opts.Pad),
		Sketch:      go2.Pointer(e.opts.Sketch),
		NoXMLTag:    go2.Pointer(true),
	}
	if e.overrides != nil {
		opts.ThemeOverrides = e.overrides
		if e.opts.DarkThemeID != nil {
			opts.DarkThemeOverrides = e.overrides
		}
	}
	return opts
}

// renderBoard renders d and its descendants, keeping the board tree shape.
func (e *Engine) renderBoard(d *d2target.Diagram, opts *d2svg.RenderOpts) (*diagram.Result, error) {
	r := &diagram.Result{
		Name:         d.Name,
		Title:        strings.TrimSpace(d.Root.Label),
		IsFolderOnly: d.IsFolderOnly,
	}
	if !d.IsFolderOnly {
		out, err := d2svg.Render(d, opts)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRender, err, "render board %q", d.Name)
		}
		r.Content = string(out)
	}

	var err error
	if r.Layers, err = e.renderBoards(d.Layers, opts); err != nil {
		return nil, err
	}
	if r.Scenarios, err = e.renderBoards(d.Scenarios, opts); err != nil {
		return nil, err
	}
	if r.Steps, err = e.renderBoards(d.Steps, opts); err != nil {
		return nil, err
	}
	return r, nil
}

func (e *Engine) renderBoards(ds []*d2target.Diagram, opts *d2svg.RenderOpts) ([]*diagram.Result, error) {
	if len(ds) == 0 {
		return nil, nil
	}
	out := make([]*diagram.Result, 0, len(ds))
	for _, d := range ds {
		r, err := e.renderBoard(d, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// failure converts a render error to its wire form.
func failure(err error) native.Failure {
	var pe *d2parser.ParseError
	if stderrors.As(err, &pe) {
		f := native.Failure{ParseError: &native.ParseErrors{}}
		for _, e := range pe.Errors {
			rng, _ := e.Range.MarshalText()
			f.ParseError.Errs = append(f.ParseError.Errs, native.Diagnostic{
				Range:   string(rng),
				Message: e.Message,
			})
		}
		if len(f.ParseError.Errs) == 0 {
			return native.Failure{Message: pe.Error()}
		}
		return f
	}
	f := native.Failure{Message: errors.UserMessage(err)}
	if code := errors.GetCode(err); code != "" {
		f.Code = string(code)
	}
	return f
}
