package renderer

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mdbook-svg/pkg/diagram"
	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/native"
)

// trackingEntry records every buffer it hands out.
type trackingEntry struct {
	mu   sync.Mutex
	bufs []*native.Buffer
	make func(source string) *native.Buffer
}

func (e *trackingEntry) Call(source string) *native.Buffer {
	b := e.make(source)
	e.mu.Lock()
	e.bufs = append(e.bufs, b)
	e.mu.Unlock()
	return b
}

func (e *trackingEntry) allReleased(t *testing.T) {
	t.Helper()
	for i, b := range e.bufs {
		if b != nil && !b.Released() {
			t.Errorf("buffer %d was not released", i)
		}
	}
}

func TestNativeSuccess(t *testing.T) {
	want := &diagram.Result{
		Name:    "root",
		Content: "<svg/>",
		Steps:   []*diagram.Result{diagram.Leaf("one", "<svg>1</svg>")},
	}
	e := &trackingEntry{make: func(string) *native.Buffer { return native.Encode(want) }}

	got, err := NewNative("d2", e).Render(context.Background(), "a -> b")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
	e.allReleased(t)
}

func TestNativeFailures(t *testing.T) {
	tests := []struct {
		name string
		buf  func() *native.Buffer
		want errors.Code
	}{
		{"nil buffer", func() *native.Buffer { return nil }, errors.ErrCodeRender},
		{"plain message", func() *native.Buffer {
			return native.EncodeFailure(native.Failure{Message: "layout failed"})
		}, errors.ErrCodeRender},
		{"parse error", func() *native.Buffer {
			return native.EncodeFailure(native.Failure{ParseError: &native.ParseErrors{Errs: []native.Diagnostic{
				{Range: "index.d2,1:4:10-1:6:12", Message: "index.d2:2:5: unexpected token"},
			}}})
		}, errors.ErrCodeParse},
		{"malformed json", func() *native.Buffer {
			b := native.NewBuffer()
			_, _ = b.WriteString("{not json")
			return b
		}, errors.ErrCodeRender},
		{"empty", func() *native.Buffer { return native.NewBuffer() }, errors.ErrCodeRender},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &trackingEntry{make: func(string) *native.Buffer { return tt.buf() }}
			_, err := NewNative("d2", e).Render(context.Background(), "x")
			if !errors.Is(err, tt.want) {
				t.Fatalf("Render() error = %v, want code %s", err, tt.want)
			}
			e.allReleased(t)
		})
	}
}

func TestNativeParseDiagnostics(t *testing.T) {
	e := native.EntryFunc(func(string) *native.Buffer {
		return native.EncodeFailure(native.Failure{ParseError: &native.ParseErrors{Errs: []native.Diagnostic{
			{Range: "index.d2,1:4:10-1:6:12", Message: "index.d2:2:5: unexpected token"},
			{Range: "2:0:20-2:3:23", Message: "3:1: missing value"},
		}}})
	})
	_, err := NewNative("d2", e).Render(context.Background(), "x")

	var pe *ParseError
	if !asParseError(err, &pe) {
		t.Fatalf("Render() error = %T, want *ParseError", err)
	}
	want := []Diagnostic{
		{Line: 2, Column: 5, Message: "unexpected token"},
		{Line: 3, Column: 1, Message: "missing value"},
	}
	if diff := cmp.Diff(want, pe.Diagnostics); diff != "" {
		t.Errorf("Diagnostics mismatch (-want +got):\n%s", diff)
	}

	// The fence of the block opens on chapter line 10; source line 2 is
	// chapter line 12.
	located := pe.At("guide/intro.md", 10).Error()
	for _, line := range []string{
		"guide/intro.md:12:5: unexpected token",
		"guide/intro.md:13:1: missing value",
	} {
		if !strings.Contains(located, line) {
			t.Errorf("located error %q missing %q", located, line)
		}
	}
}

func TestNativeCancelledBeforeCall(t *testing.T) {
	called := false
	e := native.EntryFunc(func(string) *native.Buffer {
		called = true
		return native.Encode(diagram.Leaf("", "<svg/>"))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewNative("d2", e).Render(ctx, "x"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if called {
		t.Error("engine should not be called after cancellation")
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in        string
		line, col int
	}{
		{"index.d2,0:0:0-0:5:5", 1, 1},
		{"a,b.d2,3:7:40-3:9:42", 4, 8},
		{"12:3:100-12:4:101", 13, 4},
		{"", 0, 0},
		{"garbage", 0, 0},
	}
	for _, tt := range tests {
		line, col := parseRange(tt.in)
		if line != tt.line || col != tt.col {
			t.Errorf("parseRange(%q) = %d:%d, want %d:%d", tt.in, line, col, tt.line, tt.col)
		}
	}
}

func asParseError(err error, target **ParseError) bool {
	pe, ok := err.(*ParseError)
	if ok {
		*target = pe
	}
	return ok
}
