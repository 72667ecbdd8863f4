// Package errs defines the error contract shared by every pipeline stage.
// Each failure carries a Kind so callers can react to the class of problem
// without string matching, plus optional schema diagnostics (missing columns,
// a redacted row preview) for data-shaped failures.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindUnexpected Kind = iota
	KindConfig
	KindAuth
	KindNotFound
	KindRemoteService
	KindSchema
	KindEmptyDataset
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config error"
	case KindAuth:
		return "auth error"
	case KindNotFound:
		return "not found"
	case KindRemoteService:
		return "remote service error"
	case KindSchema:
		return "schema error"
	case KindEmptyDataset:
		return "empty dataset"
	default:
		return "unexpected error"
	}
}

// Error is the typed error passed between stages. Missing, Columns and
// Preview are only populated for schema / empty-dataset failures; Preview
// must never contain original cell values.
type Error struct {
	Kind    Kind
	Message string
	Missing []string
	Columns []string
	Preview string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the Kind of err, walking the wrap chain. Errors that were
// never classified come back as KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FormatDiagnostic renders err as the single human-readable block the CLI
// prints before exiting nonzero. Schema and empty-dataset failures get the
// worksheet column list and the redacted preview appended so the operator can
// see the shape of the data without seeing any of it.
func FormatDiagnostic(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindUnexpected {
		return fmt.Sprintf("Unexpected error: %v", err)
	}

	line := e.Message
	if e.Err != nil {
		line = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s", line)
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, "\nColumns: %v", e.Columns)
	}
	if e.Preview != "" {
		fmt.Fprintf(&b, "\nPreview (redacted):\n%s", e.Preview)
	}
	return b.String()
}
