// Package pirerr defines the error kinds propagated across every PIR
// component: every fallible operation returns one of these instead of
// panicking or relying on sentinel string matching.
package pirerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so transports can map it to a status code
// without string-matching the message.
type Kind int

const (
	// Internal marks unexpected failures: a primitive op failed, noise
	// budget exhausted mid-computation, serialisation failed.
	Internal Kind = iota
	// InvalidArgument marks user-facing failures: bad index, mismatched
	// selection-vector length, a value too large to encode.
	InvalidArgument
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

type pirError struct {
	kind  Kind
	msg   string
	cause error
}

func (e *pirError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *pirError) Unwrap() error { return e.cause }

// New builds an error of the given kind. cause may be nil.
func New(kind Kind, msg string, cause error) error {
	return &pirError{kind: kind, msg: msg, cause: cause}
}

// Invalid is shorthand for New(InvalidArgument, ...).
func Invalid(format string, args ...any) error {
	return &pirError{kind: InvalidArgument, msg: fmt.Sprintf(format, args...)}
}

// InvalidWrap wraps cause as InvalidArgument.
func InvalidWrap(cause error, format string, args ...any) error {
	return &pirError{kind: InvalidArgument, msg: fmt.Sprintf(format, args...), cause: cause}
}

// Wrap marks cause as Internal, preserving its message.
func Wrap(cause error, format string, args ...any) error {
	return &pirError{kind: Internal, msg: fmt.Sprintf(format, args...), cause: cause}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var pe *pirError
	if errors.As(err, &pe) {
		return pe.kind == kind
	}
	return false
}

// KindOf extracts the Kind from err, defaulting to Internal when err was
// not produced by this package.
func KindOf(err error) Kind {
	var pe *pirError
	if errors.As(err, &pe) {
		return pe.kind
	}
	return Internal
}
