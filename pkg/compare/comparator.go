// Package compare implements the pairwise comparison engines for text,
// images and files. Every engine returns a models.ComparisonResult or a
// *compare.Error; engines hold no state between calls and are safe for
// concurrent use.
package compare

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a comparison could not be performed
type ErrorKind string

const (
	// KindInputMissing indicates one or both inputs are absent
	KindInputMissing ErrorKind = "input_missing"
	// KindTypeMismatch indicates text content given to a binary operation or vice versa
	KindTypeMismatch ErrorKind = "type_mismatch"
	// KindSizeLimit indicates an input exceeds the configured size cap
	KindSizeLimit ErrorKind = "size_limit_exceeded"
	// KindDecodeFailure indicates an image could not be decoded
	KindDecodeFailure ErrorKind = "decode_failure"
	// KindInvalidOption indicates an unknown mode or granularity
	KindInvalidOption ErrorKind = "invalid_option"
)

// Error is returned by all engines. It is terminal for the comparison
// that produced it; no partial result accompanies it.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

var (
	ErrInputMissing  = &Error{Kind: KindInputMissing}
	ErrTypeMismatch  = &Error{Kind: KindTypeMismatch}
	ErrSizeLimit     = &Error{Kind: KindSizeLimit}
	ErrDecodeFailure = &Error{Kind: KindDecodeFailure}
	ErrInvalidOption = &Error{Kind: KindInvalidOption}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the ErrorKind of err, or "" if err is not an engine error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
