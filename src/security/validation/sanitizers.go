package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	ErrEmptyValue       = errors.New("value is empty")
	ErrInvalidCharacter = errors.New("value contains invalid characters")
	ErrPathTraversal    = errors.New("path escapes the output directory")
)

const maxWorksheetNameLength = 100

// SanitizeSpreadsheetID trims and validates a Google Sheets document ID.
// IDs are opaque tokens of letters, digits, dashes and underscores; anything
// else is rejected before it can reach a request URL.
func SanitizeSpreadsheetID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", ErrEmptyValue
	}
	for _, r := range trimmed {
		isValid := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_'
		if !isValid {
			return "", fmt.Errorf("%w: %q", ErrInvalidCharacter, r)
		}
	}
	return trimmed, nil
}

// SanitizeWorksheetName trims a worksheet title and rejects control
// characters and unreasonable lengths. Worksheet titles may otherwise hold
// any printable text, including CJK.
func SanitizeWorksheetName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyValue
	}
	if len(trimmed) > maxWorksheetNameLength {
		return "", fmt.Errorf("worksheet name longer than %d bytes", maxWorksheetNameLength)
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: control character", ErrInvalidCharacter)
		}
	}
	return trimmed, nil
}

// SanitizeOutputPath joins filename onto dir and verifies the result stays
// inside dir. Only plain file names are accepted; anything resolving outside
// the directory is a traversal attempt.
func SanitizeOutputPath(dir, filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", ErrEmptyValue
	}
	if filepath.Base(filename) != filename {
		return "", ErrPathTraversal
	}
	joined := filepath.Join(dir, filename)
	cleanDir := filepath.Clean(dir)
	if cleanDir != "." && !strings.HasPrefix(joined, cleanDir+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return joined, nil
}

// StripUnprintable removes non-printable characters, allowing common
// whitespace like space, tab, newline and carriage return. Used on values
// destined for logs and terminal output.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
