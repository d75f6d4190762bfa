// File: api/transport.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Transport-facing capabilities consumed by the wait-set core.
//
// The shared-memory transport itself (sample layout, delivery guarantees)
// is an external collaborator. The core only requires the level-triggered
// listener contract below: readiness is "queue non-empty", dequeuing is
// side-effecting and non-blocking, and wake-up delivery is best-effort
// (a waker ping may coalesce, never block).

package api

// Listener is a capability to drain event identifiers signaled by one or
// more cross-process notifiers.
type Listener interface {
	// TryDequeue removes and returns the next queued identifier.
	// Non-blocking; ok is false when the queue is empty.
	TryDequeue() (id EventID, ok bool)

	// Pending reports the number of queued identifiers. Readiness for a
	// wait is Pending() > 0 (level-triggered).
	Pending() int

	// AddWaker registers a wake channel pinged (non-blocking send) each
	// time an identifier is enqueued. One channel may be registered with
	// many listeners; pings coalesce.
	AddWaker(w chan<- struct{})

	// RemoveWaker deregisters a previously added wake channel.
	RemoveWaker(w chan<- struct{})
}

// Notifier is a capability to enqueue an event identifier for every
// listener of its service.
type Notifier interface {
	// Notify delivers id to all listeners currently attached to the
	// notifier's service. Never blocks on slow consumers.
	Notify(id EventID) error
}
