// internal/core/errors.go
package core

import (
	"errors"
	"fmt"
)

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// NewError creates an error with a custom message under an existing code.
func NewError(base *Error, message string) *Error {
	return &Error{
		Code:    base.Code,
		Message: message,
	}
}

// Predefined errors. Every failure the dashboard surfaces belongs to
// exactly one of these classes.
var (
	// ErrValidation covers local pre-request input failures. These never
	// reach the network.
	ErrValidation = &Error{Code: "VALIDATION", Message: "invalid input"}

	// ErrNetwork covers transport failures: DNS, connection refused,
	// broken connections.
	ErrNetwork = &Error{Code: "NETWORK", Message: "backend unreachable"}

	// ErrNetworkTimeout covers requests that exceeded the bounded
	// request timeout.
	ErrNetworkTimeout = &Error{Code: "NETWORK_TIMEOUT", Message: "backend request timed out"}

	// ErrServer covers non-2xx responses from the backend.
	ErrServer = &Error{Code: "SERVER", Message: "backend rejected request"}

	// ErrMalformedResponse covers 2xx responses whose body fails
	// normalization.
	ErrMalformedResponse = &Error{Code: "MALFORMED_RESPONSE", Message: "backend response failed validation"}
)

// Display returns a human-readable message suitable for the UI.
// Structured errors render their message plus cause detail when
// available; anything else falls back to Error().
func Display(err error) string {
	if err == nil {
		return ""
	}
	var coreErr *Error
	if errors.As(err, &coreErr) {
		if coreErr.Cause != nil {
			return fmt.Sprintf("%s: %v", coreErr.Message, coreErr.Cause)
		}
		return coreErr.Message
	}
	return err.Error()
}
