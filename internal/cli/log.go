package cli

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// verboseEnv enables debug logging when set to a true value.
const verboseEnv = "MDBOOK_SVG_VERBOSE"

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
// Preprocessor logs must go to stderr: stdout carries the book.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// VerboseFromEnv reports whether getenv enables verbose logging.
func VerboseFromEnv(getenv func(string) string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(getenv(verboseEnv)))
	return err == nil && v
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 3 files (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
