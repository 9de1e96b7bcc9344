package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeMalformedTopology, "layer %d has %d vertices", 3, 20)

	if err.Code != ErrCodeMalformedTopology {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMalformedTopology)
	}

	if err.Message != "layer 3 has 20 vertices" {
		t.Errorf("Message = %v, want %v", err.Message, "layer 3 has 20 vertices")
	}

	expected := "MALFORMED_TOPOLOGY: layer 3 has 20 vertices"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("no such file")
	err := Wrap(ErrCodeFileNotFound, cause, "open mesh")

	if err.Code != ErrCodeFileNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeFileNotFound)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "FILE_NOT_FOUND: open mesh: no such file"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeMissingSection, "test"),
			code:     ErrCodeMissingSection,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeMissingSection, "test"),
			code:     ErrCodeShapeInference,
			expected: false,
		},
		{
			name:     "outer code",
			err:      Wrap(ErrCodeInvalidInput, New(ErrCodeMalformedTopology, "inner"), "outer"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "inner code",
			err:      Wrap(ErrCodeInvalidInput, New(ErrCodeMalformedTopology, "inner"), "outer"),
			code:     ErrCodeMalformedTopology,
			expected: true,
		},
		{
			name:     "wrapped by fmt",
			err:      fmt.Errorf("body 0: %w", New(ErrCodeShapeInference, "no geometry")),
			code:     ErrCodeShapeInference,
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
			err:      New(ErrCodeParse, "test"),
			expected: ErrCodeParse,
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
			name:     "nested",
			err:      Wrap(ErrCodeMalformedTopology, New(ErrCodeMalformedTopology, "tail layer has 3 vertices"), "body 2"),
			expected: "body 2: tail layer has 3 vertices",
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

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Error("IsFatal(nil) = true")
	}
	if IsFatal(New(ErrCodeParse, "bad vertex")) {
		t.Error("parse errors must not be fatal")
	}
	for _, code := range []Code{ErrCodeMalformedTopology, ErrCodeMissingSection, ErrCodeShapeInference} {
		if !IsFatal(New(code, "x")) {
			t.Errorf("IsFatal(%s) = false, want true", code)
		}
	}
}
