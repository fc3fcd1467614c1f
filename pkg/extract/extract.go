package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

// Block is one diagram fence in a chapter.
type Block struct {
	Start  int    // offset of the first fence character
	End    int    // offset just past the closing fence, excluding the line break
	Marker string // marker that selected the fence
	Label  string // text after the marker, trimmed; may be empty
	Source string // fence content with the fence indentation removed
	Line   int    // 1-based line of the opening fence
	Index  int    // position among the chapter's diagram blocks
}

// Span returns the raw fenced text of b within chapter.
func (b Block) Span(chapter string) string {
	return chapter[b.Start:b.End]
}

// UnterminatedError reports a diagram fence that runs to the end of the chapter.
type UnterminatedError struct {
	Marker string
	Line   int
}

func (e *UnterminatedError) Error() string {
	return fmt.Sprintf("unterminated %q block opened at line %d", e.Marker, e.Line)
}

// Code classifies the error for errors.Is.
func (e *UnterminatedError) Code() errors.Code { return errors.ErrCodeUnterminatedBlock }

var md = goldmark.New()

// Blocks returns the diagram blocks of chapter whose info string starts with
// marker, in document order. Blocks never overlap.
func Blocks(chapter, marker string) ([]Block, error) {
	if marker == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "empty marker")
	}
	src := []byte(chapter)
	doc := md.Parser().Parse(text.NewReader(src))

	var fences []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fb, ok := n.(*ast.FencedCodeBlock); ok {
			fences = append(fences, fb)
		}
		return ast.WalkContinue, nil
	})

	var blocks []Block
	for _, fb := range fences {
		if fb.Info == nil {
			continue
		}
		info := string(fb.Info.Segment.Value(src))
		label, ok := matchMarker(info, marker)
		if !ok {
			continue
		}

		start, ch, n := openingFence(src, fb.Info.Segment.Start)
		line := bytes.Count(src[:start], []byte("\n")) + 1

		closeAt := contentEnd(src, fb)
		if closeAt < 0 {
			return nil, &UnterminatedError{Marker: marker, Line: line}
		}
		end, ok := closingFence(src, closeAt, ch, n)
		if !ok {
			return nil, &UnterminatedError{Marker: marker, Line: line}
		}

		blocks = append(blocks, Block{
			Start:  start,
			End:    end,
			Marker: marker,
			Label:  label,
			Source: content(src, fb),
			Line:   line,
			Index:  len(blocks),
		})
	}
	return blocks, nil
}

// matchMarker reports whether info starts with marker as a whole word and
// returns the trimmed remainder as the label.
func matchMarker(info, marker string) (string, bool) {
	if !strings.HasPrefix(info, marker) {
		return "", false
	}
	rest := info[len(marker):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// openingFence walks back from the info string to the first fence character.
func openingFence(src []byte, infoStart int) (start int, ch byte, n int) {
	i := infoStart
	for i > 0 && (src[i-1] == ' ' || src[i-1] == '\t') {
		i--
	}
	if i == 0 {
		return 0, 0, 0
	}
	ch = src[i-1]
	j := i
	for j > 0 && src[j-1] == ch {
		j--
	}
	return j, ch, i - j
}

// contentEnd returns the offset where the line after the fence content
// begins, or -1 when the input ends first.
func contentEnd(src []byte, fb *ast.FencedCodeBlock) int {
	lines := fb.Lines()
	if lines.Len() > 0 {
		last := lines.At(lines.Len() - 1)
		if last.Stop >= len(src) || src[last.Stop-1] != '\n' {
			return -1
		}
		return last.Stop
	}
	nl := bytes.IndexByte(src[fb.Info.Segment.Stop:], '\n')
	if nl < 0 {
		return -1
	}
	return fb.Info.Segment.Stop + nl + 1
}

// closingFence checks that the line at pos closes a fence of n ch characters
// and returns the offset of its end, excluding the line break.
func closingFence(src []byte, pos int, ch byte, n int) (int, bool) {
	lineEnd := len(src)
	if nl := bytes.IndexByte(src[pos:], '\n'); nl >= 0 {
		lineEnd = pos + nl
	}
	line := src[pos:lineEnd]

	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t' || line[i] == '>') {
		i++
	}
	j := i
	for j < len(line) && line[j] == ch {
		j++
	}
	if n == 0 || j-i < n || len(bytes.TrimSpace(line[j:])) != 0 {
		return 0, false
	}
	if lineEnd > pos && src[lineEnd-1] == '\r' {
		lineEnd--
	}
	return lineEnd, true
}

func content(src []byte, fb *ast.FencedCodeBlock) string {
	var buf bytes.Buffer
	lines := fb.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.String()
}
