package utils

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// Size limits
const (
	MaxContentSize  = 256 * 1024 // working copy of one tab
	MaxPathLength   = 512
	MaxIDLength     = 128
	MaxElementName  = 64
	MaxPointerValue = 1e6
)

// ErrInvalid marks request values rejected by validation
var ErrInvalid = errors.New("invalid input")

var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// PathPattern allows the characters file tree paths are built from
	PathPattern = regexp.MustCompile(`^[a-zA-Z0-9._ ()+/-]+$`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required: %w", fieldName, ErrInvalid)
	}
	if value == "" {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters: %w", fieldName, minLen, ErrInvalid)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters: %w", fieldName, maxLen, ErrInvalid)
	}
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters: %w", fieldName, ErrInvalid)
	}
	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}
	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed): %w", fieldName, ErrInvalid)
	}
	return nil
}

// ValidatePath validates a relative, slash-separated file tree path
func ValidatePath(p string) error {
	if err := ValidateString(p, "path", 1, MaxPathLength, true); err != nil {
		return err
	}
	if !PathPattern.MatchString(p) {
		return fmt.Errorf("path contains invalid characters: %w", ErrInvalid)
	}
	if strings.HasPrefix(p, "/") || path.Clean(p) != p {
		return fmt.Errorf("path must be relative and clean: %w", ErrInvalid)
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return fmt.Errorf("path must not leave the tree: %w", ErrInvalid)
		}
	}
	return nil
}

// ValidateContent validates the working copy of a tab
func ValidateContent(content string) error {
	if len(content) > MaxContentSize {
		return fmt.Errorf("content size %d bytes exceeds maximum %d bytes: %w", len(content), MaxContentSize, ErrInvalid)
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("content is not valid UTF-8: %w", ErrInvalid)
	}
	if content != "" {
		if mt := mimetype.Detect([]byte(content)); !isText(mt) {
			return fmt.Errorf("content looks like %s, not text: %w", mt.String(), ErrInvalid)
		}
	}
	return nil
}

// isText reports whether mt is text/plain or one of its descendants
func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// ValidateCoordinate rejects pointer positions far outside any viewport
func ValidateCoordinate(v float64, fieldName string) error {
	if v != v || v > MaxPointerValue || v < -MaxPointerValue {
		return fmt.Errorf("%s out of range: %w", fieldName, ErrInvalid)
	}
	return nil
}
