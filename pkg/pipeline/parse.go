package pipeline

import (
	stderrors "errors"

	"github.com/matzehuels/mdbook-svg/pkg/book"
	"github.com/matzehuels/mdbook-svg/pkg/diagram"
	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/extract"
	"github.com/matzehuels/mdbook-svg/pkg/naming"
)

// doc is a chapter with diagrams.
type doc struct {
	chapter *book.Chapter
	path    string
	jobs    []*job
}

// job is the render request for one block.
type job struct {
	doc   *doc
	block extract.Block
	name  string

	result *diagram.Result
	views  []diagram.View
	err    error
}

// discovery is the state of one run after stage 1.
type discovery struct {
	names *naming.Table
	docs  []*doc // chapters scanned, in book order
	jobs  []*job // all blocks, in book order
}

// discover extracts the blocks of every chapter and names them. Chapters
// are visited in order so names are stable across runs.
func discover(chapters []*book.Chapter, marker string) (*discovery, error) {
	d := &discovery{names: naming.NewTable()}
	for _, ch := range chapters {
		if ch == nil || ch.IsDraft() {
			continue
		}
		path := *ch.Path
		if err := errors.ValidateChapterPath(path); err != nil {
			return nil, &ChapterError{Path: path, Block: -1, Err: err}
		}
		blocks, err := extract.Blocks(ch.Content, marker)
		if err != nil {
			ce := &ChapterError{Path: path, Block: -1, Err: err}
			var ue *extract.UnterminatedError
			if stderrors.As(err, &ue) {
				ce.Line = ue.Line
			}
			return nil, ce
		}

		dc := &doc{chapter: ch, path: path}
		d.docs = append(d.docs, dc)
		for _, b := range blocks {
			j := &job{doc: dc, block: b, name: d.names.Allocate(path, b.Index, b.Label)}
			dc.jobs = append(dc.jobs, j)
			d.jobs = append(d.jobs, j)
		}
	}
	return d, nil
}

// nameViews assigns view names in book order and returns the view count.
// The root view shares its block's name, which discover already claimed.
func (d *discovery) nameViews() int {
	n := 0
	for _, j := range d.jobs {
		for i := range j.views {
			v := &j.views[i]
			if v.RelID == "" {
				v.Name = j.name
			} else {
				v.Name = d.names.Reserve(diagram.ViewName(j.name, v.RelID))
			}
		}
		n += len(j.views)
	}
	return n
}
