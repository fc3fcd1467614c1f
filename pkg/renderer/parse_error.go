package renderer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/native"
)

// Diagnostic is one parse error position. Line and Column are 1-based and
// relative to the diagram source.
type Diagnostic struct {
	Line    int
	Column  int
	Message string
}

// ParseError reports source the engine could not parse.
type ParseError struct {
	Diagnostics []Diagnostic

	// Path and FenceLine place the diagnostics in a chapter when set.
	Path      string
	FenceLine int
}

// Code implements errors.Coder.
func (e *ParseError) Code() errors.Code { return errors.ErrCodeParse }

// At returns a copy of e located in the chapter at path whose diagram fence
// opens on fenceLine.
func (e *ParseError) At(path string, fenceLine int) *ParseError {
	c := *e
	c.Path = path
	c.FenceLine = fenceLine
	return &c
}

func (e *ParseError) Error() string {
	lines := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		lines = append(lines, e.format(d))
	}
	return strings.Join(lines, "\n")
}

func (e *ParseError) format(d Diagnostic) string {
	if d.Line <= 0 {
		if e.Path != "" {
			return e.Path + ": " + d.Message
		}
		return d.Message
	}
	if e.Path == "" {
		return fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.FenceLine+d.Line, d.Column, d.Message)
}

// positionPrefix matches the "path:line:col: " or "line:col: " prefix engines
// put in front of their messages.
var positionPrefix = regexp.MustCompile(`^(?:[^:\n]*:)?\d+:\d+: `)

func newParseError(pe *native.ParseErrors) *ParseError {
	e := &ParseError{}
	for _, d := range pe.Errs {
		line, col := parseRange(d.Range)
		e.Diagnostics = append(e.Diagnostics, Diagnostic{
			Line:    line,
			Column:  col,
			Message: positionPrefix.ReplaceAllString(d.Message, ""),
		})
	}
	return e
}

// parseRange reads the start of "path,line:col:byte-line:col:byte" and
// returns it 1-based. An unreadable range yields zeros.
func parseRange(r string) (line, col int) {
	if i := strings.LastIndexByte(r, ','); i >= 0 {
		r = r[i+1:]
	}
	start, _, _ := strings.Cut(r, "-")
	parts := strings.Split(start, ":")
	if len(parts) < 2 {
		return 0, 0
	}
	l, err1 := strconv.Atoi(parts[0])
	c, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || l < 0 || c < 0 {
		return 0, 0
	}
	return l + 1, c + 1
}
