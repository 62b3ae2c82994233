// Package domainerrors provides coded errors for the lease registry.
//
// Services return these so transports and callers can branch on the code
// rather than on error text. Infrastructure layers return sentinel errors
// (pkg/platform/sentinel) and services translate them at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure. Codes are part of the API contract:
// they appear verbatim in HTTP error envelopes and must stay stable.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_failed"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"
)

// Lease lifecycle rejections. Callers must be able to distinguish these
// programmatically, so each is a first-class code rather than a message
// on a generic one.
const (
	// CodeLeaseActive rejects a claim on a name whose lease has not expired.
	CodeLeaseActive Code = "lease_active"
	// CodeInvalidDuration rejects a term outside the 1..10 year range.
	CodeInvalidDuration Code = "invalid_duration"
	// CodeInsufficientPayment rejects a payment below the required amount.
	CodeInsufficientPayment Code = "insufficient_payment"
	// CodeNotOwner rejects a renewal by anyone but the recorded owner.
	CodeNotOwner Code = "not_owner"
	// CodeRegistryPaused rejects mutations while the registry is paused.
	CodeRegistryPaused Code = "registry_paused"
)

// Error is a coded domain error. Construct via New or Wrap.
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

// Is matches coded errors by code alone, so errors.Is(err, New(code, ""))
// holds regardless of message. Messages are for humans; codes are the
// contract.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New returns a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf returns a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. The cause stays
// reachable through errors.Unwrap for logging; the code is what callers
// branch on.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// CodeOf returns the code of the outermost coded error in err's chain,
// or CodeInternal when the chain carries no coded error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if errors.As(err, &de) {
			if de.Code == code {
				return true
			}
			err = de.cause
			continue
		}
		return false
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability in tests.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// MessageOf returns the message of the outermost coded error, or the plain
// Error() text for uncoded errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// HTTPStatus maps a code to the HTTP status transports should emit.
// Unknown codes map to 500 so a missing entry fails closed.
func HTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation, CodeInvalidInput, CodeInvalidDuration:
		return http.StatusBadRequest
	case CodeInsufficientPayment:
		return http.StatusPaymentRequired
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeNotOwner:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeLeaseActive:
		return http.StatusConflict
	case CodeRegistryPaused:
		return http.StatusLocked
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
