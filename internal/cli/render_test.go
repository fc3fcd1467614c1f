package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/mdbook-svg/pkg/config"
)

const catBookTOML = `[book]
src = "src"

[preprocessor.graphviz]
executable = "sh"
arguments = ["-c", "cat"]
cache = "none"
output-to-file = true
`

// writeBook creates book.toml and one chapter and returns the book root.
func writeBook(t *testing.T, chapter string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "book.toml"), []byte(catBookTOML), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "src"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "src", "ch.md"), []byte(chapter), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestRenderChapterToStdout(t *testing.T) {
	root := writeBook(t, "Intro\n\n```dot process\n<svg>x</svg>\n```\n")
	te := newTestCLI(t, config.Graphviz)

	err := te.run("render", "--config", filepath.Join(root, "book.toml"), filepath.Join(root, "src", "ch.md"))
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	want := "Intro\n\n![ch_0](ch_0.generated.svg)\n\n"
	if got := te.out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if _, err := os.Stat(filepath.Join(root, "src", "ch_0.generated.svg")); err != nil {
		t.Errorf("svg not written: %v", err)
	}
	orig, _ := os.ReadFile(filepath.Join(root, "src", "ch.md"))
	if !strings.Contains(string(orig), "```dot process") {
		t.Error("chapter should be unchanged without --in-place")
	}
}

func TestRenderChapterInPlaceDryRun(t *testing.T) {
	root := writeBook(t, "```dot process\n<svg>x</svg>\n```\n")
	te := newTestCLI(t, config.Graphviz)
	chapter := filepath.Join(root, "src", "ch.md")

	err := te.run("render", "-c", filepath.Join(root, "book.toml"), "--in-place", "--dry-run", chapter)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	data, _ := os.ReadFile(chapter)
	if !strings.HasPrefix(string(data), "![ch_0](ch_0.generated.svg)") {
		t.Errorf("chapter not rewritten: %q", data)
	}
	if _, err := os.Stat(filepath.Join(root, "src", "ch_0.generated.svg")); !os.IsNotExist(err) {
		t.Error("dry run should not write svg files")
	}
	if te.out.Len() != 0 {
		t.Errorf("in-place should not print, got %q", te.out.String())
	}
}

func TestRenderChapterOutsideSource(t *testing.T) {
	root := writeBook(t, "x\n")
	outside := filepath.Join(t.TempDir(), "other.md")
	if err := os.WriteFile(outside, []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	te := newTestCLI(t, config.Graphviz)

	if err := te.run("render", "-c", filepath.Join(root, "book.toml"), outside); err == nil {
		t.Error("chapter outside the source directory should fail")
	}
}

func TestRenderDiagramFile(t *testing.T) {
	root := writeBook(t, "x\n")
	src := filepath.Join(root, "Arch Overview.dot")
	if err := os.WriteFile(src, []byte("<svg>arch</svg>"), 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(root, "out")
	te := newTestCLI(t, config.Graphviz)

	if err := te.run("render", "-c", filepath.Join(root, "book.toml"), "-o", outDir, src); err != nil {
		t.Fatalf("render error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "arch_overview.svg"))
	if err != nil {
		t.Fatalf("svg not written: %v", err)
	}
	if string(data) != "<svg>arch</svg>" {
		t.Errorf("svg = %q", data)
	}
}

func TestRenderMissingConfig(t *testing.T) {
	te := newTestCLI(t, config.Graphviz)
	err := te.run("render", "--config", filepath.Join(t.TempDir(), "missing.toml"), "x.md")
	if err == nil {
		t.Error("explicit missing config should fail")
	}
}

func TestDiagramExt(t *testing.T) {
	if got := diagramExt(config.Graphviz); got != "dot" {
		t.Errorf("diagramExt(graphviz) = %q", got)
	}
	if got := diagramExt(config.D2); got != "d2" {
		t.Errorf("diagramExt(d2) = %q", got)
	}
}
