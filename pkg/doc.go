// Package pkg provides the libraries behind the mdBook diagram preprocessors
// mdbook-graphviz and mdbook-d2.
//
// # Overview
//
// A preprocessor receives a book, finds fenced code blocks marked with its
// info string, renders each one to SVG and puts the SVG where the block was.
// Every other byte of a chapter is left as it was. The pkg directory is
// organized into four areas:
//
//  1. Text - finding blocks and putting rendered output back
//  2. Rendering - turning diagram source into boards of SVG
//  3. Orchestration - running the whole book through both
//  4. Infrastructure - caching, configuration, errors, metrics
//
// # Architecture
//
// The data flow of one build:
//
//	chapter text
//	     ↓
//	[extract] (fenced blocks with the marker)
//	     ↓
//	[naming] (unique block names, book order)
//	     ↓
//	[renderer] (process or native engine, behind [cache])
//	     ↓
//	[diagram] (boards flattened into views)
//	     ↓
//	[theme] (placeholder colors to CSS variables)
//	     ↓
//	[splice] (inline markup or SVG files)
//	     ↓
//	chapter text with diagrams
//
// [pipeline] drives these stages over all chapters of a [book].
//
// # Quick Start
//
// Render the diagrams of a book read from mdBook:
//
//	import (
//	    "github.com/matzehuels/mdbook-svg/pkg/book"
//	    "github.com/matzehuels/mdbook-svg/pkg/pipeline"
//	    "github.com/matzehuels/mdbook-svg/pkg/renderer"
//	)
//
//	ctx, b, _ := book.Read(os.Stdin)
//	r := renderer.NewProcess("dot", []string{"-Tsvg"}, renderer.DefaultTimeout)
//	_, err := pipeline.NewRunner(r, logger).Run(context.Background(), b.Chapters(), pipeline.Options{
//	    Marker: "dot process",
//	    SrcDir: ctx.SrcDir(),
//	})
//	_ = book.Write(os.Stdout, b)
//
// # Main Packages
//
// ## Text
//
// [extract] - CommonMark fence discovery with exact byte spans and fence
// lines.
//
// [naming] - Build-scoped name table: slugged chapter paths, labels and
// collision suffixes.
//
// [splice] - Replacement markup (single board, tab list, file references)
// and SVG normalization with id prefixing.
//
// ## Rendering
//
// [renderer] - The Renderer interface with its process, native and cached
// implementations.
//
// [native] - The buffer protocol between the pipeline and in-process engines,
// with the [native/d2] and [native/graphviz] engines.
//
// [diagram] - Board trees, parallel-tree matching and flattening.
//
// [theme] - Placeholder color rewriting at SVG and CSS emission points.
//
// ## Orchestration
//
// [pipeline] - Discover, render, name and splice over a whole book, with
// bounded concurrency and first-error-in-book-order reporting.
//
// [book] - The mdBook preprocessor protocol.
//
// ## Infrastructure
//
// [cache] - Render cache backends: none, memory, file, Redis and MongoDB.
//
// [config] - The [preprocessor.<name>] table from the mdBook context or
// book.toml.
//
// [errors] - Coded errors shared by all packages.
//
// [observability] - Hooks for render, cache and HTTP events, with a
// Prometheus implementation.
//
// [assets] - The embedded stylesheet written by copy-css.
//
// # Testing
//
// Run tests:
//
//	go test ./...                        # All tests
//	go test ./pkg/pipeline/...           # Specific package
//
// [extract]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/extract
// [naming]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/naming
// [splice]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/splice
// [renderer]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/renderer
// [native]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/native
// [native/d2]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/native/d2
// [native/graphviz]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/native/graphviz
// [diagram]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/diagram
// [theme]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/theme
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/pipeline
// [book]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/book
// [cache]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/observability
// [assets]: https://pkg.go.dev/github.com/matzehuels/mdbook-svg/pkg/assets
package pkg
