// File: api/result.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Generic result propagation and cancellation contracts.

package api

// Result wraps one payload or error, for channel-borne delivery where a
// two-value return is unavailable.
type Result[T any] struct {
	Value T
	Err   error
}

// Cancelable is any long-running operation that may be cancelled.
type Cancelable interface {
	// Cancel requests cooperative termination.
	Cancel()
	// Done is closed once the operation has fully stopped.
	Done() <-chan struct{}
	// Err reports why the operation terminated, nil for a clean cancel.
	Err() error
}
