// Package domainerrors provides coded errors for domain and service layers.
//
// Services construct these at validation boundaries so handlers can map a
// failure to a transport status without string matching. Stores return
// pkg/platform/sentinel errors instead; services translate them here.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure. Callers branch on codes, never on
// message text.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal"
	CodeInvariantViolation Code = "invariant_violation"

	// Ledger-specific codes. Every rejected precondition in the registry
	// surfaces one of these so callers can distinguish, for example, a
	// hospital that was never registered from one awaiting authorization.
	CodeAlreadyRegistered     Code = "already_registered"
	CodeNotRegistered         Code = "not_registered"
	CodeNotAuthorizedHospital Code = "not_authorized_hospital"
	CodeInvalidParent         Code = "invalid_parent"
	CodeNotTokenOwner         Code = "not_token_owner"
	CodeTransferNotAllowed    Code = "transfer_not_allowed"
)

// Error is a coded domain error. Wrapped causes stay reachable through
// errors.Unwrap for logging; codes are the public contract.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err
// returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code Code) bool {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// MessageOf extracts the human-readable message from a coded error without
// the code prefix, falling back to err.Error() for uncoded errors.
func MessageOf(err error) string {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Message
	}
	return err.Error()
}

// CodeOf extracts the code from err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code
	}
	return CodeInternal
}
