package renderer

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/matzehuels/mdbook-svg/pkg/diagram"
	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

// DefaultTimeout bounds a single external render.
const DefaultTimeout = 30 * time.Second

// waitDelay is how long Wait keeps draining pipes after the process is killed.
const waitDelay = 2 * time.Second

// Process renders by running an external command: the source is written to
// stdin and the SVG read from stdout. Anything on stderr fails the render.
type Process struct {
	Command string
	Args    []string
	Timeout time.Duration // zero means DefaultTimeout
}

// NewProcess returns a Process renderer for command.
func NewProcess(command string, args []string, timeout time.Duration) *Process {
	return &Process{Command: command, Args: args, Timeout: timeout}
}

// Backend implements Renderer.
func (p *Process) Backend() string { return "process:" + p.Command }

// Render implements Renderer.
func (p *Process) Render(ctx context.Context, source string) (*diagram.Result, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Command, p.Args...)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStreamIO, err, "open stdin of %s", p.Command)
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return nil, errors.Wrap(errors.ErrCodeProcessSpawn, err, "start %s", p.Command)
	}

	written := make(chan error, 1)
	go func() {
		_, err := io.WriteString(stdin, source)
		if cerr := stdin.Close(); err == nil {
			err = cerr
		}
		written <- err
	}()

	waitErr := cmd.Wait()
	writeErr := <-written

	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, errors.New(errors.ErrCodeTimeout, "%s did not finish within %s", p.Command, timeout)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if stderrors.As(waitErr, &exitErr) {
			return nil, errors.New(errors.ErrCodeRender, "%s exited with status %d: %s",
				p.Command, exitErr.ExitCode(), diagnostics(stderr.String()))
		}
		return nil, errors.Wrap(errors.ErrCodeStreamIO, waitErr, "read output of %s", p.Command)
	}
	if writeErr != nil && !ignorableWriteError(writeErr) {
		return nil, errors.Wrap(errors.ErrCodeStreamIO, writeErr, "write source to %s", p.Command)
	}
	if stderr.Len() > 0 {
		return nil, errors.New(errors.ErrCodeRender, "%s reported: %s", p.Command, diagnostics(stderr.String()))
	}
	return diagram.Leaf("", stdout.String()), nil
}

// ignorableWriteError reports whether a stdin write failed only because the
// process stopped reading. The exit status decides the outcome then.
func ignorableWriteError(err error) bool {
	return stderrors.Is(err, syscall.EPIPE) || stderrors.Is(err, os.ErrClosed)
}

func diagnostics(stderr string) string {
	s := strings.TrimSpace(stderr)
	if s == "" {
		return "no diagnostics"
	}
	return s
}
