package renderer

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

func shell(t *testing.T, script string) *Process {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	return NewProcess("sh", []string{"-c", script}, 0)
}

func TestProcessEchoesStdout(t *testing.T) {
	p := shell(t, "cat")
	r, err := p.Render(context.Background(), "<svg>hello</svg>")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if r.Content != "<svg>hello</svg>" {
		t.Errorf("Content = %q", r.Content)
	}
	if len(r.Layers)+len(r.Scenarios)+len(r.Steps) != 0 {
		t.Error("process result should be a single leaf")
	}
}

func TestProcessErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   errors.Code
	}{
		{"non-zero exit", "cat >/dev/null; echo 'syntax error in line 1' >&2; exit 1", errors.ErrCodeRender},
		{"exit without output", "exit 3", errors.ErrCodeRender},
		{"stderr with zero exit", "cat; echo 'Warning: node a' >&2", errors.ErrCodeRender},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := shell(t, tt.script)
			_, err := p.Render(context.Background(), "digraph { a -> b }")
			if !errors.Is(err, tt.want) {
				t.Fatalf("Render() error = %v, want code %s", err, tt.want)
			}
		})
	}
}

func TestProcessStderrInMessage(t *testing.T) {
	p := shell(t, "cat >/dev/null; echo 'syntax error in line 1' >&2; exit 1")
	_, err := p.Render(context.Background(), "digraph {")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := errors.UserMessage(err); !strings.Contains(got, "syntax error in line 1") {
		t.Errorf("message %q should carry stderr", got)
	}
}

func TestProcessMissingExecutable(t *testing.T) {
	p := NewProcess("mdbook-svg-definitely-not-installed", nil, 0)
	_, err := p.Render(context.Background(), "x")
	if !errors.Is(err, errors.ErrCodeProcessSpawn) {
		t.Fatalf("Render() error = %v, want PROCESS_SPAWN", err)
	}
}

func TestProcessTimeout(t *testing.T) {
	p := shell(t, "exec sleep 5")
	p.Timeout = 100 * time.Millisecond

	start := time.Now()
	_, err := p.Render(context.Background(), "x")
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Fatalf("Render() error = %v, want TIMEOUT", err)
	}
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("timeout took %s, process was not killed", elapsed)
	}
}

func TestProcessBackend(t *testing.T) {
	p := NewProcess("dot", []string{"-Tsvg"}, 0)
	if got := p.Backend(); got != "process:dot" {
		t.Errorf("Backend() = %q", got)
	}
}
