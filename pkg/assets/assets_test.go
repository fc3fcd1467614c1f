package assets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCSSEmbedded(t *testing.T) {
	css := string(CSS())
	for _, want := range []string{".svg-container", ".svg-content", "svg-tabs-"} {
		if !strings.Contains(css, want) {
			t.Errorf("stylesheet missing %q", want)
		}
	}
}

func TestWriteCSS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "css", "svg.css")

	written, err := WriteCSS(path, "1.0.0")
	if err != nil {
		t.Fatalf("WriteCSS() error = %v", err)
	}
	if !written {
		t.Fatal("first WriteCSS() should write")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "/* mdBook-svg:1.0.0*/") {
		t.Errorf("missing version header: %q", string(data[:40]))
	}
	if !strings.HasSuffix(string(data), string(CSS())) {
		t.Error("stylesheet body not written")
	}
}

func TestWriteCSSUpToDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svg.css")
	if _, err := WriteCSS(path, "1.0.0"); err != nil {
		t.Fatal(err)
	}

	written, err := WriteCSS(path, "1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if written {
		t.Error("same version should not rewrite")
	}

	written, err = WriteCSS(path, "1.1.0")
	if err != nil {
		t.Fatal(err)
	}
	if !written {
		t.Error("new version should rewrite")
	}
	if !UpToDate(path, "1.1.0") {
		t.Error("UpToDate() = false after rewrite")
	}
}

func TestUpToDateMissing(t *testing.T) {
	if UpToDate(filepath.Join(t.TempDir(), "nope.css"), "1.0.0") {
		t.Error("missing file reported up to date")
	}
}
