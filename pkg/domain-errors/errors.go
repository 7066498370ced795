// Package domainerrors carries transport-agnostic error codes so callers can
// classify failures without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure.
type Code string

const (
	CodeInternal              Code = "internal_error"
	CodeBadRequest            Code = "bad_request"
	CodeValidation            Code = "validation_error"
	CodeInvalidInput          Code = "invalid_input"
	CodeInvariantViolation    Code = "invariant_violation"
	CodeNotFound              Code = "not_found"
	CodeConflict              Code = "conflict"
	CodeTimeout               Code = "timeout"
	CodeInvalidState          Code = "invalid_state"
	CodeCapabilityUnavailable Code = "capability_unavailable"
	CodePermissionDenied      Code = "permission_denied"
	CodeSubmissionFailed      Code = "submission_failed"
)

// Error is a coded error. Message is safe to show to the end user.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// DomainError is kept for call sites that match with errors.As by value name.
type DomainError = Error

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to err. Returns nil when err is nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if errors.As(err, &de) {
			if de.Code == code {
				return true
			}
			err = de.Err
			continue
		}
		return false
	}
	return false
}

// Is is an alias of HasCode that reads well in assertions.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
