package errors

import (
	"path"
	"strings"
	"unicode"
)

// ValidateChapterPath validates a book-relative chapter path before it is used
// to derive output locations. Generated files are written next to the chapter,
// so the path must stay inside the book source directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateChapterPath(p string) error {
	if p == "" {
		return New(ErrCodeInvalidPath, "chapter path cannot be empty")
	}

	const maxPathLength = 500
	if len(p) > maxPathLength {
		return New(ErrCodeInvalidPath, "chapter path too long (max %d characters)", maxPathLength)
	}

	for _, r := range p {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "chapter path contains invalid control characters")
		}
	}

	if strings.HasPrefix(p, "/") {
		return New(ErrCodeInvalidPath, "chapter path must be relative (cannot start with /)")
	}

	if strings.Contains(p, "\\") {
		return New(ErrCodeInvalidPath, "chapter path cannot contain backslashes")
	}

	for _, part := range strings.Split(path.Clean(p), "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "chapter path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateMarker validates the info-string marker that selects diagram fences.
// A marker must fit on the fence line and must not contain characters that
// would make a backtick fence invalid.
func ValidateMarker(marker string) error {
	if strings.TrimSpace(marker) == "" {
		return New(ErrCodeInvalidConfig, "info-string cannot be empty")
	}
	if marker != strings.TrimSpace(marker) {
		return New(ErrCodeInvalidConfig, "info-string cannot start or end with whitespace: %q", marker)
	}
	if strings.ContainsAny(marker, "\r\n`") {
		return New(ErrCodeInvalidConfig, "info-string contains invalid characters: %q", marker)
	}
	return nil
}
