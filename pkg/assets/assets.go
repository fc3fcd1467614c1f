// Package assets provides the stylesheet for the diagram markup.
//
// The stylesheet is embedded into the binary using go:embed and written
// into the book on request (copy-css), so no separate download is needed.
// Every written copy starts with a version header; a copy whose header
// matches the running version is left alone.
package assets

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

//go:embed svg.css
var svgCSS []byte

// CSS returns the stylesheet without header.
func CSS() []byte {
	return svgCSS
}

// Header returns the first line of a stylesheet written by version.
func Header(version string) string {
	return "/* mdBook-svg:" + version + "*/"
}

// UpToDate reports whether the file at path starts with the header for
// version. A missing or short file is not up to date.
func UpToDate(path, version string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	want := []byte(Header(version))
	got := make([]byte, len(want))
	if _, err := io.ReadFull(f, got); err != nil {
		return false
	}
	return bytes.Equal(got, want)
}

// WriteCSS writes the stylesheet to path unless it is already up to date.
// It reports whether the file was written.
func WriteCSS(path, version string) (bool, error) {
	if UpToDate(path, version) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, errors.Wrap(errors.ErrCodeStreamIO, err, "create %s", filepath.Dir(path))
	}
	content := append([]byte(Header(version)), svgCSS...)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return false, errors.Wrap(errors.ErrCodeStreamIO, err, "write %s", path)
	}
	return true, nil
}
