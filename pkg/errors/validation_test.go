package errors

import (
	"testing"
)

func TestValidateChapterPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "chapter.md", false},
		{"valid nested", "guide/intro.md", false},
		{"valid inner dotdot", "guide/../intro.md", false},
		{"valid dotfile dir", ".drafts/intro.md", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute", "/etc/passwd", true},
		{"escapes root", "../outside.md", true},
		{"escapes after clean", "guide/../../outside.md", true},
		{"null byte", "foo\x00bar.md", true},
		{"backslash", "guide\\intro.md", true},
		{"newline", "foo\nbar.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChapterPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateChapterPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateChapterPath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateMarker(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"graphviz default", "dot process", false},
		{"d2 default", "d2", false},
		{"custom", "diagram", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"leading space", " dot", true},
		{"trailing space", "dot ", true},
		{"backtick", "d`2", true},
		{"newline", "dot\nprocess", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMarker(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMarker(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
