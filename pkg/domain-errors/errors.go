// Package domainerrors provides coded errors for domain and service layers.
//
// Services return these so transports can translate them into stable HTTP
// responses without string matching. Infrastructure facts (not found, conflict
// at the storage layer) use pkg/platform/sentinel; stores never construct
// coded errors themselves.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for callers and transports.
type Code string

const (
	// CodeValidation marks missing or malformed caller input. The message
	// names the offending field so it can be surfaced verbatim to the actor.
	CodeValidation Code = "validation"

	// CodeUnauthorized marks a failed authentication (no or bad credentials).
	CodeUnauthorized Code = "unauthorized"

	// CodeForbidden marks an authorization gate denial: the actor is known
	// but may not perform the requested action on the target resource.
	CodeForbidden Code = "forbidden"

	// CodeInvalidTransition marks a lifecycle event that is not defined for
	// the application's current status. The message names both.
	CodeInvalidTransition Code = "invalid_transition"

	// CodeConflict marks a concurrent-modification failure detected by the
	// store's version check. Callers should re-fetch and decide whether to
	// reapply.
	CodeConflict Code = "conflict"

	// CodeConfiguration marks malformed reference data, e.g. a scheme whose
	// eligibility rules cannot be evaluated. Fatal for that scheme's
	// operations; never masked and never defaulting to eligible.
	CodeConfiguration Code = "configuration"

	CodeNotFound   Code = "not_found"
	CodeBadRequest Code = "bad_request"
	CodeInternal   Code = "internal"
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error with a caller-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error while preserving
// the chain for errors.Is/As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so transports always have something stable to map.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
