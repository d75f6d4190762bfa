// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error taxonomy for the ipcwait library.
//
// Environmental and contention failures are ordinary error values the
// caller must handle. Lifetime-discipline violations (use of a released
// handle, releasing a WaitSet that still has live guards) are programmer
// errors and panic instead; no retry can fix them.

package api

import "fmt"

// Sentinel errors used across the library.
var (
	// ErrCapacityExceeded is returned by attach operations once a WaitSet
	// holds as many guards as its fixed capacity allows.
	ErrCapacityExceeded = fmt.Errorf("waitset capacity exceeded")

	// ErrAlreadyAttached is returned when the same listener is attached
	// to one WaitSet twice.
	ErrAlreadyAttached = fmt.Errorf("listener already attached")

	// ErrInterrupted is returned by Wait when an external shutdown signal
	// terminated the wait. Spurious wake-ups are retried internally and
	// never surface as this error.
	ErrInterrupted = fmt.Errorf("wait interrupted")

	// ErrInvalid signals use of a released or foreign resource observed
	// mid-operation. Fatal; never retried.
	ErrInvalid = fmt.Errorf("invalid resource")

	// ErrCancelled is the expected outcome of an asynchronous operation
	// whose cancellation signal fired before data arrived.
	ErrCancelled = fmt.Errorf("operation cancelled")

	// ErrTerminated is returned by a Stream once it has shut down; a
	// terminated stream never produces further elements.
	ErrTerminated = fmt.Errorf("event stream terminated")

	// ErrServiceClosed is returned by transport ports whose owning
	// service or node has been closed.
	ErrServiceClosed = fmt.Errorf("service is closed")

	// ErrNotFound is returned when a named transport resource does not
	// exist and creation was not requested.
	ErrNotFound = fmt.Errorf("resource not found")
)

// ErrorCode classifies structured errors.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeCapacityExceeded
	ErrCodeAlreadyAttached
	ErrCodeInterrupted
	ErrCodeInvalid
	ErrCodeCancelled
	ErrCodeTerminated
	ErrCodeServiceClosed
	ErrCodeNotFound
	ErrCodeInvalidArgument
	ErrCodeInternal
)

// Error is a structured error with a code and optional context values.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext attaches a context value to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
