// Package errcode defines the coded error type shared by all gistkit
// packages. Errors carry a SQLSTATE-like class so that a host database can
// translate them into its own error taxonomy, plus optional detail and hint
// lines for user-visible messages.
package errcode

import (
	"errors"
	"fmt"
)

// Code classifies an error for the host.
type Code string

const (
	// CodeSyntax covers malformed cube/seg/tsvector/tsquery literals and
	// headline option strings.
	CodeSyntax Code = "syntax_error"
	// CodeLimitExceeded covers dimension, signature-length, item-count and
	// word-length overflows. Silent truncation is not permitted for these.
	CodeLimitExceeded Code = "limit_exceeded"
	// CodeArrayElement covers NULL elements in input arrays and
	// out-of-bounds subscripts.
	CodeArrayElement Code = "array_element_error"
	// CodeFeatureNotSupported covers operations with no binary protocol
	// (signature keys) and retired type variants.
	CodeFeatureNotSupported Code = "feature_not_supported"
	// CodeInternal covers unreachable parser states, unknown strategy
	// numbers and exceeded recursion guards.
	CodeInternal Code = "internal_error"
)

// Error is a coded error. The zero Detail/Hint are omitted from Error().
type Error struct {
	Code    Code
	Message string
	Detail  string
	Hint    string
	cause   error
}

func (e *Error) Error() string { return e.Message }

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Newf creates a coded error.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrapf creates a coded error wrapping cause.
func Wrapf(cause error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

// WithDetail attaches a detail line.
func (e *Error) WithDetail(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithHint attaches a hint line.
func (e *Error) WithHint(format string, args ...any) *Error {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

// CodeOf extracts the Code from err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
