package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed client error with HTTP awareness. Status carries
// the backend status code when the error originated from an HTTP response,
// and zero for purely local failures (validation, transport).
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors covering the client failure taxonomy. Validation failures
// are caught before any request leaves the process; NotAuthenticated maps an
// HTTP 401; APIFailure covers every other non-success response; NetworkFailure
// means the request never completed; NoResult is the expected-absence case for
// QC and job lookups (HTTP 404) and is not treated as an error by callers.
var (
	ErrValidation       = New("VALIDATION_ERROR", 0, "validation failed")
	ErrNotAuthenticated = New("NOT_AUTHENTICATED", http.StatusUnauthorized, "not authenticated")
	ErrAPIFailure       = New("API_FAILURE", http.StatusInternalServerError, "backend request failed")
	ErrNetworkFailure   = New("NETWORK_FAILURE", 0, "network error")
	ErrNoResult         = New("NO_RESULT", http.StatusNotFound, "no result available")
	ErrConflict         = New("CONFLICT", http.StatusConflict, "conflict")
	ErrInternal         = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// IsNotAuthenticated reports whether err is an authentication failure.
func IsNotAuthenticated(err error) bool {
	return hasCode(err, ErrNotAuthenticated.Code)
}

// IsNetworkFailure reports whether the request never completed.
func IsNetworkFailure(err error) bool {
	return hasCode(err, ErrNetworkFailure.Code)
}

// IsNoResult reports whether err is the expected-absence case (404 on a
// QC or job lookup).
func IsNoResult(err error) bool {
	return hasCode(err, ErrNoResult.Code)
}

// IsValidation reports whether err was raised by local validation.
func IsValidation(err error) bool {
	return hasCode(err, ErrValidation.Code)
}

func hasCode(err error, code string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}
