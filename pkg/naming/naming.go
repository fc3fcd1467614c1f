// Package naming allocates build-unique identifiers for diagrams.
//
// Names double as file names (NAME.generated.svg) and as HTML id fragments,
// so they are restricted to lower-case ASCII letters, digits, '_' and '-'.
// A [Table] lives for exactly one build: create it empty, allocate every
// block name in book order, then every view name in book order. Allocation
// order is the only input to disambiguation, so an unchanged book yields
// the same names on every run.
package naming

import (
	"path"
	"strconv"
	"strings"
	"sync"
)

// Table records every name handed out during a build.
// It is safe for concurrent use.
type Table struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{names: make(map[string]struct{})}
}

// Allocate returns a unique name for the index-th diagram of chapterPath.
// The base name is the chapter slug followed by the label slug, or by the
// index when the label is empty.
func (t *Table) Allocate(chapterPath string, index int, label string) string {
	return t.Reserve(BaseName(chapterPath, index, label))
}

// Reserve claims name, appending "-2", "-3", ... until it is unique, and
// returns the claimed name.
func (t *Table) Reserve(name string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	candidate := name
	for n := 2; t.taken(candidate); n++ {
		candidate = name + "-" + strconv.Itoa(n)
	}
	t.names[candidate] = struct{}{}
	return candidate
}

// Contains reports whether name has been handed out.
func (t *Table) Contains(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.taken(name)
}

// Len returns the number of names handed out.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.names)
}

func (t *Table) taken(name string) bool {
	_, ok := t.names[name]
	return ok
}

// BaseName derives the undisambiguated name for a diagram block.
func BaseName(chapterPath string, index int, label string) string {
	chapter := Slug(strings.TrimSuffix(chapterPath, path.Ext(chapterPath)))
	suffix := Slug(label)
	if suffix == "" {
		suffix = strconv.Itoa(index)
	}
	if chapter == "" {
		return suffix
	}
	return chapter + "_" + suffix
}

// Slug lower-cases s and collapses every run of characters other than
// ASCII letters and digits into a single '_', trimming it from both ends.
func Slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
