// Package errors provides domain-specific error types and sentinel errors
// shared by the webhook, the router and the library client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrMalformedRequest indicates the webhook body is not a usable CX request.
	ErrMalformedRequest = errors.New("malformed webhook request")

	// ErrEmptyRequest indicates the body carried none of the routing inputs.
	ErrEmptyRequest = errors.New("empty webhook request")

	// ErrUnknownTag indicates a fulfillment tag no handler is bound to.
	ErrUnknownTag = errors.New("unknown fulfillment tag")

	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrBackendUnavailable indicates the library API could not be reached.
	ErrBackendUnavailable = errors.New("library backend unavailable")

	// ErrHandlerPanic indicates a fulfillment handler panicked.
	ErrHandlerPanic = errors.New("handler panic")
)

// BackendError describes a failed call to the library REST API.
// It unwraps to ErrBackendUnavailable when no HTTP status was received.
type BackendError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("library api error (op=%s, status=%d): %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("library api error (op=%s): %v", e.Operation, e.Err)
}

func (e *BackendError) Unwrap() []error {
	if e.StatusCode == 0 {
		return []error{e.Err, ErrBackendUnavailable}
	}
	return []error{e.Err}
}

// NewBackendError creates a new backend error.
func NewBackendError(operation string, statusCode int, err error) *BackendError {
	if err == nil {
		err = fmt.Errorf("unexpected status %d", statusCode)
	}
	return &BackendError{
		Operation:  operation,
		StatusCode: statusCode,
		Err:        err,
	}
}
