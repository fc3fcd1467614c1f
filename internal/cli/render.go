package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mdbook-svg/pkg/book"
	"github.com/matzehuels/mdbook-svg/pkg/config"
	"github.com/matzehuels/mdbook-svg/pkg/diagram"
	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/naming"
	"github.com/matzehuels/mdbook-svg/pkg/pipeline"
)

const defaultBookTOML = "book.toml"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	config  string // path to book.toml
	inPlace bool   // rewrite markdown files instead of printing them
	dryRun  bool   // render but write no SVG files
	outDir  string // directory for SVGs of standalone diagram files
}

// renderCommand creates the render command. It runs the preprocessor over
// markdown files outside an mdBook build, or renders standalone diagram
// files to SVG.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{config: defaultBookTOML}

	cmd := &cobra.Command{
		Use:   "render [files...]",
		Short: "Render diagrams in markdown chapters or diagram files",
		Long: fmt.Sprintf(`Render diagrams without running mdBook.

Markdown files (.md) are processed like chapters of the book configured by
--config and printed to stdout, or rewritten with --in-place. Any other file
is read as one diagram and written as SVG next to it (or into --out-dir),
one file per board.

  %[1]s render src/intro.md
  %[1]s render --in-place src/*.md
  %[1]s render diagrams/architecture.%[2]s`, c.name(), diagramExt(c.Preset)),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", opts.config, "path to book.toml")
	cmd.Flags().BoolVarP(&opts.inPlace, "in-place", "w", false, "rewrite markdown files in place")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "render without writing SVG files")
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", "", "output directory for standalone diagram files")

	return cmd
}

// diagramExt is the conventional file extension of the preset's sources.
func diagramExt(p config.Preset) string {
	if p.Name == config.Graphviz.Name {
		return "dot"
	}
	return p.Name
}

// runRender loads the config, builds the renderer and processes args.
func (c *CLI) runRender(ctx context.Context, args []string, opts renderOpts) error {
	bf, root, err := c.loadBookFile(opts.config)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig(bf.Config)
	if err != nil {
		return err
	}

	eng, err := c.newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	var chapters, diagrams []string
	for _, a := range args {
		if strings.EqualFold(filepath.Ext(a), ".md") {
			chapters = append(chapters, a)
		} else {
			diagrams = append(diagrams, a)
		}
	}

	prog := newProgress(c.Logger)
	if len(chapters) > 0 {
		srcDir := filepath.Join(root, bf.Src)
		if err := c.renderChapters(ctx, eng, cfg, srcDir, chapters, opts); err != nil {
			return err
		}
	}
	for _, path := range diagrams {
		if err := c.renderDiagramFile(ctx, eng, path, opts); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Rendered %d files", len(args)))
	return nil
}

// loadBookFile reads the book config at path. A missing default book.toml
// yields the preset defaults rooted at the working directory.
func (c *CLI) loadBookFile(path string) (config.BookFile, string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && path == defaultBookTOML {
		c.Logger.Debug("no book.toml, using defaults")
		return config.BookFile{Src: "."}, ".", nil
	}
	bf, err := config.LoadBookTOML(path, c.Preset.Name)
	if err != nil {
		return bf, "", err
	}
	if !bf.Found {
		c.Logger.Debugf("no [preprocessor.%s] table in %s, using defaults", c.Preset.Name, path)
	}
	return bf, filepath.Dir(path), nil
}

// renderChapters runs the pipeline over markdown files as chapters of the
// book rooted at srcDir.
func (c *CLI) renderChapters(ctx context.Context, eng *engine, cfg config.Config, srcDir string, files []string, opts renderOpts) error {
	chapters := make([]*book.Chapter, len(files))
	for i, f := range files {
		ch, err := readChapter(srcDir, f)
		if err != nil {
			return err
		}
		chapters[i] = ch
	}

	popts := pipelineOptions(cfg, eng.theme, srcDir)
	popts.DryRun = opts.dryRun
	popts.Logger = c.Logger

	spinner := newRenderSpinner(ctx, eng.Backend())
	popts.Progress = spinner.Progress
	spinner.Start()
	res, err := pipeline.NewRunner(eng, c.Logger).Run(ctx, chapters, popts)
	if err != nil {
		spinner.StopWithError()
		return err
	}
	spinner.StopWithSuccess(len(chapters))
	printStats(res.Stats.Blocks, res.Stats.Views, len(res.Files))
	for _, f := range res.Files {
		printFile(filepath.Join(srcDir, filepath.FromSlash(f)))
	}

	for i, ch := range chapters {
		if !opts.inPlace {
			if _, err := io.WriteString(c.Out, ch.Content); err != nil {
				return errors.Wrap(errors.ErrCodeStreamIO, err, "write output")
			}
			continue
		}
		if err := os.WriteFile(files[i], []byte(ch.Content), 0644); err != nil {
			return errors.Wrap(errors.ErrCodeStreamIO, err, "write %s", files[i])
		}
		printFile(files[i])
	}
	return nil
}

// readChapter loads file as a chapter whose path is relative to srcDir.
func readChapter(srcDir, file string) (*book.Chapter, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", file)
	}
	absSrc, err := filepath.Abs(srcDir)
	if err != nil {
		return nil, err
	}
	absFile, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(absSrc, absFile)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, errors.New(errors.ErrCodeInvalidPath, "%s is outside the book source directory %s", file, srcDir)
	}
	rel = filepath.ToSlash(rel)
	return &book.Chapter{
		Name:    strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)),
		Content: string(data),
		Path:    &rel,
	}, nil
}

// renderDiagramFile renders one diagram source file and writes every view
// as <name>.svg, where name is derived from the file and the view.
func (c *CLI) renderDiagramFile(ctx context.Context, eng *engine, path string, opts renderOpts) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	res, err := eng.Render(ctx, string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if res.Title == "" {
		res.Title = base
	}
	views, err := diagram.Flatten(res)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	dir := opts.outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	if !opts.dryRun {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeStreamIO, err, "create %s", dir)
		}
	}

	stem := naming.Slug(base)
	if stem == "" {
		stem = "diagram"
	}
	printInfo("%s: %d views", path, len(views))
	for _, v := range views {
		out := filepath.Join(dir, diagram.ViewName(stem, v.RelID)+".svg")
		if opts.dryRun {
			printDetail("would write %s", out)
			continue
		}
		if err := os.WriteFile(out, []byte(eng.theme.Rewrite(v.Content)), 0644); err != nil {
			return errors.Wrap(errors.ErrCodeStreamIO, err, "write %s", out)
		}
		printFile(out)
	}
	return nil
}
