package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Limits for user-supplied identifiers. Grid dimensions above maxGridDim are
// far beyond anything the destination editor produces and usually indicate
// a typo on the command line.
const (
	maxGroupNameLength = 256
	maxBodyIndex       = 999
	maxGridDim         = 1000
)

// ValidateGroupName validates a mesh group name supplied on the command line
// or in a job file.
//
// The validation rules are:
//   - No empty names
//   - No control characters (OBJ group names are single-line)
//   - Maximum length of 256 characters
func ValidateGroupName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "group name cannot be empty")
	}

	if len(name) > maxGroupNameLength {
		return New(ErrCodeInvalidInput, "group name too long (max %d characters)", maxGroupNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "group name contains invalid control characters")
		}
	}

	return nil
}

// ValidateBodyIndex checks that b addresses a body block.
func ValidateBodyIndex(b int) error {
	if b < 0 || b > maxBodyIndex {
		return New(ErrCodeInvalidInput, "body index %d out of range (0..%d)", b, maxBodyIndex)
	}
	return nil
}

// ValidateShape checks a station×slot grid shape.
func ValidateShape(stations, slots int) error {
	if stations <= 0 || slots <= 0 {
		return New(ErrCodeInvalidInput, "grid shape %dx%d must be positive", stations, slots)
	}
	if stations > maxGridDim || slots > maxGridDim {
		return New(ErrCodeInvalidInput, "grid shape %dx%d too large (max %d per axis)", stations, slots, maxGridDim)
	}
	return nil
}

// ValidatePath validates an output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Path must not resolve to the input file (output is always a new copy)
func ValidatePath(path, input string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if input != "" && filepath.Clean(path) == filepath.Clean(input) {
		return New(ErrCodeInvalidPath, "output path %q must differ from the input file", path)
	}

	if strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path %q names a directory", path)
	}

	return nil
}
