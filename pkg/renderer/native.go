package renderer

import (
	"context"

	"github.com/matzehuels/mdbook-svg/pkg/diagram"
	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/native"
)

// Native renders through an in-process engine. The engine runs to completion
// once called; ctx is only checked before the call.
type Native struct {
	Name  string
	Entry native.Entry
}

// NewNative returns a Native renderer named name.
func NewNative(name string, entry native.Entry) *Native {
	return &Native{Name: name, Entry: entry}
}

// Backend implements Renderer.
func (n *Native) Backend() string { return n.Name }

// Render implements Renderer.
func (n *Native) Render(ctx context.Context, source string) (*diagram.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := n.Entry.Call(source)
	if buf == nil {
		return nil, errors.New(errors.ErrCodeRender, "%s returned no buffer", n.Name)
	}
	defer buf.Release()

	result, failure, err := native.Decode(buf)
	if err != nil {
		return nil, err
	}
	if failure != nil {
		if failure.ParseError != nil && len(failure.ParseError.Errs) > 0 {
			return nil, newParseError(failure.ParseError)
		}
		code := errors.ErrCodeRender
		if failure.Code != "" {
			code = errors.Code(failure.Code)
		}
		return nil, errors.New(code, "%s: %s", n.Name, failure.Message)
	}
	return result, nil
}
