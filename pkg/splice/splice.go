package splice

import (
	"fmt"
	"html"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/matzehuels/mdbook-svg/pkg/diagram"
	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/extract"
)

// FileSuffix is appended to view names to form output file names.
const FileSuffix = ".generated.svg"

// Options selects the output form.
type Options struct {
	OutputToFile bool // write SVG files and reference them
	LinkToFile   bool // wrap file references in a link to the file
}

// Rendered is a block together with its named views.
type Rendered struct {
	Block extract.Block
	Name  string         // block name; names the tab list
	Views []diagram.View // views in flatten order, Name already assigned

	// Container is the text before the opening fence on its line, such as
	// "> " in a blockquote. File references after the first repeat it.
	Container string
}

// File is an SVG file to be written for a chapter.
type File struct {
	Path    string // relative to the book source directory, slash separated
	Content []byte
}

// Markup returns the replacement for r and the files it references.
// chapterPath is the book-relative chapter path.
func Markup(chapterPath string, r Rendered, opts Options) (string, []File) {
	if opts.OutputToFile {
		return fileMarkup(chapterPath, r, opts.LinkToFile)
	}
	return inlineMarkup(r), nil
}

func inlineMarkup(r Rendered) string {
	var b strings.Builder
	b.WriteString(`<div class="svg-container">`)
	if len(r.Views) == 1 {
		writeContent(&b, r.Views[0])
		b.WriteString(`</div>`)
		return b.String()
	}

	fmt.Fprintf(&b, `<div><ul id="svg-tabs-%s">`, r.Name)
	for i, v := range r.Views {
		def := ""
		if i == 0 {
			def = " data-tabby-default"
		}
		fmt.Fprintf(&b, `<li><a%s href="#svg-content-%s" title="%s">%s</a></li>`,
			def, v.Name, html.EscapeString(strings.Join(v.Path, " / ")), html.EscapeString(v.Title))
	}
	b.WriteString(`</ul>`)
	for _, v := range r.Views {
		writeContent(&b, v)
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

func writeContent(b *strings.Builder, v diagram.View) {
	fmt.Fprintf(b, `<div id="svg-content-%s" class="svg-content">%s</div>`, v.Name, Inline(v.Content, v.Name))
}

func fileMarkup(chapterPath string, r Rendered, link bool) (string, []File) {
	dir := path.Dir(chapterPath)
	refs := make([]string, 0, len(r.Views))
	files := make([]File, 0, len(r.Views))
	for _, v := range r.Views {
		name := v.Name + FileSuffix
		files = append(files, File{Path: path.Join(dir, name), Content: []byte(v.Content)})

		img := fmt.Sprintf("![%s](%s)", escapeAlt(v.Title), name)
		if link {
			img = fmt.Sprintf("[%s](%s)", img, name)
		}
		refs = append(refs, img)
	}
	cont := continuation(r.Container)
	sep := "\n" + strings.TrimRight(cont, " \t") + "\n" + cont
	return strings.Join(refs, sep), files
}

// continuation turns the prefix of a fence line into the prefix of the
// lines that follow it: blockquote markers and indentation are kept, list
// markers become spaces of the same width.
func continuation(prefix string) string {
	b := []byte(prefix)
	for i, c := range b {
		if c != '>' && c != ' ' && c != '\t' {
			b[i] = ' '
		}
	}
	return string(b)
}

// containerOf returns the text between the start of the line holding pos
// and pos.
func containerOf(text string, pos int) string {
	return text[strings.LastIndexByte(text[:pos], '\n')+1 : pos]
}

func escapeAlt(s string) string {
	return strings.NewReplacer(`[`, `\[`, `]`, `\]`).Replace(s)
}

// Apply replaces the span of every rendered block in text and returns the
// new text with the files to write. Blocks must be in document order and
// must not overlap; bytes outside their spans are copied unchanged.
func Apply(chapterPath, text string, rendered []Rendered, opts Options) (string, []File, error) {
	var b strings.Builder
	b.Grow(len(text))
	var files []File

	last := 0
	for _, r := range rendered {
		if r.Block.Start < last || r.Block.End < r.Block.Start || r.Block.End > len(text) {
			return "", nil, errors.New(errors.ErrCodeInternal,
				"%s: block %d span [%d,%d) out of order", chapterPath, r.Block.Index, r.Block.Start, r.Block.End)
		}
		if len(r.Views) == 0 {
			return "", nil, errors.New(errors.ErrCodeRender,
				"%s: block %d rendered no views", chapterPath, r.Block.Index)
		}
		if r.Container == "" {
			r.Container = containerOf(text, r.Block.Start)
		}
		markup, fs := Markup(chapterPath, r, opts)
		b.WriteString(text[last:r.Block.Start])
		b.WriteString(markup)
		b.WriteString("\n")
		files = append(files, fs...)
		last = r.Block.End
	}
	b.WriteString(text[last:])
	return b.String(), files, nil
}

// WriteFiles writes files below srcDir, creating directories as needed.
func WriteFiles(srcDir string, files []File) error {
	for _, f := range files {
		if err := errors.ValidateChapterPath(f.Path); err != nil {
			return err
		}
		dst := filepath.Join(srcDir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return errors.Wrap(errors.ErrCodeStreamIO, err, "create %s", filepath.Dir(dst))
		}
		if err := os.WriteFile(dst, f.Content, 0644); err != nil {
			return errors.Wrap(errors.ErrCodeStreamIO, err, "write %s", dst)
		}
	}
	return nil
}
