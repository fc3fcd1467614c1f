package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("broken pipe")
	err := Wrap(ErrCodeStreamIO, cause, "write stdin")

	if err.Code != ErrCodeStreamIO {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStreamIO)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "STREAM_IO: write stdin: broken pipe"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() Code    { return ErrCodeParse }

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeTimeout, "test"),
			code:     ErrCodeTimeout,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeTimeout, "test"),
			code:     ErrCodeRender,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeRender, New(ErrCodeStreamIO, "inner"), "outer"),
			code:     ErrCodeRender,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("chapter.md: %w", New(ErrCodeUnterminatedBlock, "line 3")),
			code:     ErrCodeUnterminatedBlock,
			expected: true,
		},
		{
			name:     "coder",
			err:      fmt.Errorf("render: %w", codedErr{}),
			code:     ErrCodeParse,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeStructuralMismatch, "test"),
			expected: ErrCodeStructuralMismatch,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "Error with cause",
			err:      Wrap(ErrCodeRender, errors.New("syntax error in line 1"), "dot failed"),
			expected: "dot failed: syntax error in line 1",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}
