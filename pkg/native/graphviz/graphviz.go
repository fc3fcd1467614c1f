// Package graphviz renders DOT diagrams in process with the WebAssembly
// build of Graphviz and exposes it as a [native.Entry].
//
// It is the in-process alternative to piping the source through the dot
// executable: no Graphviz installation is needed, at the cost of a slower
// first render while the module is compiled.
package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mdbook-svg/pkg/diagram"
	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/native"
)

// Engine renders DOT sources to SVG. Calls are serialized because a Graphviz
// instance is not safe for concurrent use.
type Engine struct {
	mu sync.Mutex
	gv *graphviz.Graphviz
}

// New instantiates the Graphviz module.
func New(ctx context.Context) (*Engine, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	return &Engine{gv: gv}, nil
}

// Close releases the Graphviz module.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gv.Close()
}

// Call implements native.Entry.
func (e *Engine) Call(source string) (buf *native.Buffer) {
	defer func() {
		if p := recover(); p != nil {
			buf = native.EncodeFailure(native.Failure{
				Message: fmt.Sprintf("graphviz panicked: %v", p),
				Code:    string(errors.ErrCodeInternal),
			})
		}
	}()

	svg, err := e.Render(context.Background(), source)
	if err != nil {
		return native.EncodeFailure(failure(err))
	}
	return native.Encode(diagram.Leaf("", string(svg)))
}

// Render lays out and renders one DOT graph.
func (e *Engine) Render(ctx context.Context, source string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := graphviz.ParseBytes([]byte(source))
	if err != nil {
		return nil, &syntaxError{err: err}
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := e.gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render")
	}
	if buf.Len() == 0 {
		return nil, errors.New(errors.ErrCodeRender, "graphviz produced no output")
	}
	return buf.Bytes(), nil
}

type syntaxError struct{ err error }

func (e *syntaxError) Error() string { return e.err.Error() }

var lineRe = regexp.MustCompile(`(?i)\bline (\d+)`)

// failure converts a render error to its wire form. Syntax errors that name
// a line become a parse diagnostic.
func failure(err error) native.Failure {
	se, ok := err.(*syntaxError)
	if !ok {
		f := native.Failure{Message: errors.UserMessage(err)}
		if code := errors.GetCode(err); code != "" {
			f.Code = string(code)
		}
		return f
	}
	msg := se.Error()
	m := lineRe.FindStringSubmatch(msg)
	if m == nil {
		return native.Failure{Message: msg, Code: string(errors.ErrCodeParse)}
	}
	line, _ := strconv.Atoi(m[1])
	if line < 1 {
		line = 1
	}
	return native.Failure{ParseError: &native.ParseErrors{Errs: []native.Diagnostic{{
		Range:   fmt.Sprintf(",%d:0:0-%d:0:0", line-1, line-1),
		Message: msg,
	}}}}
}
