package native

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/mdbook-svg/pkg/diagram"
	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

// ErrorPrefix marks a buffer that carries a Failure instead of a result.
const ErrorPrefix = "err:"

// Entry is an in-process diagram engine.
type Entry interface {
	// Call renders source and returns one buffer owned by the caller.
	Call(source string) *Buffer
}

// EntryFunc adapts a function to an Entry.
type EntryFunc func(source string) *Buffer

// Call implements Entry.
func (f EntryFunc) Call(source string) *Buffer { return f(source) }

// Failure is the error payload of a buffer.
type Failure struct {
	Message    string       `json:"message,omitempty"`
	Code       string       `json:"code,omitempty"` // optional error code, RENDER_FAILED when empty
	ParseError *ParseErrors `json:"parse_error,omitempty"`
}

// ParseErrors lists source diagnostics.
type ParseErrors struct {
	Errs []Diagnostic `json:"errs"`
}

// Diagnostic is one source error. Range has the form
// "path,line:col:byte-line:col:byte" with zero-based lines and columns.
type Diagnostic struct {
	Range   string `json:"range"`
	Message string `json:"errmsg"`
}

// Encode writes a success payload for r into a new buffer.
func Encode(r *diagram.Result) *Buffer {
	buf := NewBuffer()
	if err := json.NewEncoder(buf).Encode(r); err != nil {
		buf.Release()
		return EncodeFailure(Failure{Message: err.Error()})
	}
	return buf
}

// EncodeFailure writes an error payload into a new buffer.
func EncodeFailure(f Failure) *Buffer {
	buf := NewBuffer()
	_, _ = buf.WriteString(ErrorPrefix)
	if err := json.NewEncoder(buf).Encode(f); err != nil {
		buf.data = buf.data[:len(ErrorPrefix)]
		_, _ = buf.WriteString(fmt.Sprintf(`{"message":%q}`, err.Error()))
	}
	return buf
}

// Decode reads a buffer. Exactly one of result and failure is non-nil when
// err is nil. A malformed buffer is an error, never an empty result.
// Decode does not release buf.
func Decode(buf *Buffer) (*diagram.Result, *Failure, error) {
	if buf == nil {
		return nil, nil, errors.New(errors.ErrCodeRender, "engine returned no buffer")
	}
	if buf.Released() {
		return nil, nil, errors.New(errors.ErrCodeInternal, "engine returned a released buffer")
	}
	data := buf.Bytes()

	if rest, ok := bytes.CutPrefix(data, []byte(ErrorPrefix)); ok {
		var f Failure
		if err := json.Unmarshal(rest, &f); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeRender, err, "malformed engine error payload")
		}
		if f.Message == "" && (f.ParseError == nil || len(f.ParseError.Errs) == 0) {
			return nil, nil, errors.New(errors.ErrCodeRender, "engine error payload carries no message")
		}
		return nil, &f, nil
	}

	switch trimmed := bytes.TrimSpace(data); {
	case len(trimmed) == 0:
		return nil, nil, errors.New(errors.ErrCodeRender, "engine returned an empty buffer")
	case bytes.Equal(trimmed, []byte("null")):
		return nil, nil, errors.New(errors.ErrCodeRender, "engine returned a null payload")
	}
	var r diagram.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeRender, err, "malformed engine payload")
	}
	if at := nullBoard(&r, "root"); at != "" {
		return nil, nil, errors.New(errors.ErrCodeRender, "malformed engine payload: null board at %s", at)
	}
	return &r, nil, nil
}

// nullBoard returns the location of the first null child board under r.
func nullBoard(r *diagram.Result, at string) string {
	for _, k := range diagram.Kinds {
		for i, c := range r.Children(k) {
			loc := fmt.Sprintf("%s.%s[%d]", at, k, i)
			if c == nil {
				return loc
			}
			if inner := nullBoard(c, loc); inner != "" {
				return inner
			}
		}
	}
	return ""
}
