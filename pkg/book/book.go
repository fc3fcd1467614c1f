// Package book speaks the mdBook preprocessor protocol.
//
// mdBook runs a preprocessor with the build context and the book as a JSON
// array [context, book] on stdin and reads the modified book back from
// stdout. Before that it asks "supports <renderer>" and expects exit code 0
// for renderers the preprocessor can serve.
//
// The book is decoded only as far as this module needs: chapter content,
// path and nesting. Every other field, including ones added by future mdBook
// versions, is kept as raw JSON and written back unchanged.
package book

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

// SupportedVersion is the mdBook release line the protocol types follow.
const SupportedVersion = "0.4"

// Context is the build context mdBook sends along with the book.
type Context struct {
	Root          string `json:"root"`
	Config        Config `json:"config"`
	Renderer      string `json:"renderer"`
	MdbookVersion string `json:"mdbook_version"`
}

// Config is the parsed book.toml inside the context.
type Config struct {
	Book struct {
		Src string `json:"src"`
	} `json:"book"`
	Preprocessor map[string]json.RawMessage `json:"preprocessor"`
}

// Preprocessor returns the raw [preprocessor.<name>] table, or nil.
func (c *Context) Preprocessor(name string) json.RawMessage {
	return c.Config.Preprocessor[name]
}

// SrcDir returns the book's source directory.
func (c *Context) SrcDir() string {
	src := c.Config.Book.Src
	if src == "" {
		src = "src"
	}
	return filepath.Join(c.Root, src)
}

// VersionMismatch reports whether the context comes from an mdBook release
// line other than SupportedVersion.
func (c *Context) VersionMismatch() bool {
	v := strings.TrimPrefix(c.MdbookVersion, "v")
	return v != SupportedVersion && !strings.HasPrefix(v, SupportedVersion+".")
}

// =============================================================================
// Book
// =============================================================================

// Book is the chapter tree.
type Book struct {
	Sections []*Item
	extra    map[string]json.RawMessage
}

// Item is one entry of a section list: a chapter, a separator or a part
// title. Only chapters are decoded.
type Item struct {
	Chapter *Chapter
	raw     json.RawMessage
}

// Chapter is one page of the book.
type Chapter struct {
	Name     string
	Content  string
	Path     *string // nil for draft chapters
	SubItems []*Item
	extra    map[string]json.RawMessage
}

// IsDraft reports whether the chapter has no source file.
func (c *Chapter) IsDraft() bool { return c.Path == nil || *c.Path == "" }

// Chapters returns all non-draft chapters in book order: each chapter
// before its sub-chapters.
func (b *Book) Chapters() []*Chapter {
	var out []*Chapter
	var walk func(items []*Item)
	walk = func(items []*Item) {
		for _, it := range items {
			if it.Chapter == nil {
				continue
			}
			if !it.Chapter.IsDraft() {
				out = append(out, it.Chapter)
			}
			walk(it.Chapter.SubItems)
		}
	}
	walk(b.Sections)
	return out
}

// =============================================================================
// Protocol I/O
// =============================================================================

// Read decodes the [context, book] pair mdBook writes to stdin.
func Read(r io.Reader) (*Context, *Book, error) {
	var pair []json.RawMessage
	dec := json.NewDecoder(bufio.NewReader(r))
	if err := dec.Decode(&pair); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode preprocessor input")
	}
	if len(pair) != 2 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "preprocessor input must be [context, book], got %d elements", len(pair))
	}
	var ctx Context
	if err := json.Unmarshal(pair[0], &ctx); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode context")
	}
	var b Book
	if err := json.Unmarshal(pair[1], &b); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode book")
	}
	return &ctx, &b, nil
}

// Write encodes b for mdBook.
func Write(w io.Writer, b *Book) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(b); err != nil {
		return errors.Wrap(errors.ErrCodeStreamIO, err, "write book")
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Book) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &b.extra); err != nil {
		return err
	}
	if b.extra == nil {
		return errors.New(errors.ErrCodeInvalidInput, "book must be an object")
	}
	if raw, ok := b.extra["sections"]; ok {
		if err := json.Unmarshal(raw, &b.Sections); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b *Book) MarshalJSON() ([]byte, error) {
	return marshalWith(b.extra, map[string]any{"sections": nonNil(b.Sections)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (it *Item) UnmarshalJSON(data []byte) error {
	it.raw = append(json.RawMessage(nil), data...)
	var variant map[string]json.RawMessage
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		if err := json.Unmarshal(data, &variant); err != nil {
			return err
		}
	}
	if raw, ok := variant["Chapter"]; ok {
		it.Chapter = &Chapter{}
		return json.Unmarshal(raw, it.Chapter)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (it *Item) MarshalJSON() ([]byte, error) {
	if it.Chapter != nil {
		return encode(map[string]*Chapter{"Chapter": it.Chapter})
	}
	if it.raw == nil {
		return []byte(`"Separator"`), nil
	}
	return it.raw, nil
}

type chapterFields struct {
	Name     string  `json:"name"`
	Content  string  `json:"content"`
	Path     *string `json:"path"`
	SubItems []*Item `json:"sub_items"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Chapter) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &c.extra); err != nil {
		return err
	}
	var f chapterFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	c.Name, c.Content, c.Path, c.SubItems = f.Name, f.Content, f.Path, f.SubItems
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c *Chapter) MarshalJSON() ([]byte, error) {
	return marshalWith(c.extra, map[string]any{
		"name":      c.Name,
		"content":   c.Content,
		"path":      c.Path,
		"sub_items": nonNil(c.SubItems),
	})
}

func nonNil(items []*Item) []*Item {
	if items == nil {
		return []*Item{}
	}
	return items
}

// marshalWith encodes extra with the known fields replaced.
func marshalWith(extra map[string]json.RawMessage, known map[string]any) ([]byte, error) {
	out := make(map[string]json.RawMessage, len(extra)+len(known))
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range known {
		b, err := encode(v)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	return encode(out)
}

// encode is json.Marshal without HTML escaping; chapter content is mostly
// markup.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
