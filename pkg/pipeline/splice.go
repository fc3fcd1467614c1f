package pipeline

import (
	"github.com/matzehuels/mdbook-svg/pkg/splice"
)

// splice rewrites the chapters and writes their files. Every chapter is
// spliced before anything is written or modified.
func (d *discovery) splice(opts Options) ([]string, int, error) {
	type update struct {
		doc  *doc
		text string
	}
	var updates []update
	var files []splice.File

	for _, dc := range d.docs {
		if len(dc.jobs) == 0 {
			continue
		}
		rendered := make([]splice.Rendered, len(dc.jobs))
		for i, j := range dc.jobs {
			rendered[i] = splice.Rendered{Block: j.block, Name: j.name, Views: j.views}
		}
		text, fs, err := splice.Apply(dc.path, dc.chapter.Content, rendered, opts.Splice)
		if err != nil {
			return nil, 0, &ChapterError{Path: dc.path, Block: -1, Err: err}
		}
		updates = append(updates, update{doc: dc, text: text})
		files = append(files, fs...)
	}

	if !opts.DryRun && len(files) > 0 {
		if err := splice.WriteFiles(opts.SrcDir, files); err != nil {
			return nil, 0, err
		}
	}
	for _, u := range updates {
		u.doc.chapter.Content = u.text
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths, len(updates), nil
}
