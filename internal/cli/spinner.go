package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// renderSpinner shows render progress for one pipeline run on uiOut.
// Progress is safe to call from the render workers.
type renderSpinner struct {
	backend string
	done    atomic.Int64
	total   atomic.Int64

	ctx     context.Context
	cancel  context.CancelFunc
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
	started atomic.Bool

	mu    sync.Mutex
	width int // width of the last line drawn
}

// newRenderSpinner creates a spinner for renders by backend. It stops
// drawing when ctx is cancelled.
func newRenderSpinner(ctx context.Context, backend string) *renderSpinner {
	sctx, cancel := context.WithCancel(ctx)
	return &renderSpinner{
		backend: backend,
		ctx:     sctx,
		cancel:  cancel,
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Progress records that done of total diagrams have rendered.
// It has the signature of pipeline.Options.Progress.
func (s *renderSpinner) Progress(done, total int) {
	s.total.Store(int64(total))
	for {
		cur := s.done.Load()
		if int64(done) <= cur || s.done.CompareAndSwap(cur, int64(done)) {
			return
		}
	}
}

func (s *renderSpinner) message() string {
	total := s.total.Load()
	if total == 0 {
		return fmt.Sprintf("Scanning chapters (%s)...", s.backend)
	}
	return fmt.Sprintf("Rendering diagrams %d/%d (%s)...", s.done.Load(), total, s.backend)
}

// Start begins drawing.
func (s *renderSpinner) Start() {
	s.started.Store(true)
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.quit:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *renderSpinner) draw(frame string) {
	msg := s.message()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(uiOut, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(msg))
	s.width = len(msg) + 2
}

func (s *renderSpinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(uiOut, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// Stop stops drawing and clears the line. Calling it again has no effect.
func (s *renderSpinner) Stop() {
	s.once.Do(func() {
		close(s.quit)
		if s.started.Load() {
			<-s.stopped
		}
		s.cancel()
		s.clearLine()
	})
}

// StopWithSuccess stops the spinner and reports the rendered count.
func (s *renderSpinner) StopWithSuccess(chapters int) {
	s.Stop()
	printSuccess("Rendered %d diagrams in %d chapters with %s", s.done.Load(), chapters, s.backend)
}

// StopWithError stops the spinner and reports how far rendering got.
func (s *renderSpinner) StopWithError() {
	s.Stop()
	if total := s.total.Load(); total > 0 {
		printError("Render failed after %d of %d diagrams", s.done.Load(), total)
		return
	}
	printError("Render failed")
}

// Cancelled reports whether the build context ended while the spinner runs.
func (s *renderSpinner) Cancelled() bool {
	select {
	case <-s.quit:
		return false
	default:
		return s.ctx.Err() != nil
	}
}
