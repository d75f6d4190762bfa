// File: api/events.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Event identifiers and wait-set firing records.

package api

// EventID identifies one cross-process event. Notifiers enqueue EventIDs;
// listeners dequeue them. The value space is owned by the application.
type EventID uint64

// AttachmentID is a stable token identifying one attachment within one
// WaitSet. Tokens increase monotonically per WaitSet and are never reused,
// so identity never depends on pointer equality or address reuse.
type AttachmentID uint64

// FiredKind says why an attachment was reported ready.
type FiredKind uint8

const (
	// FiredNotification means the attached listener has queued event
	// identifiers waiting to be drained.
	FiredNotification FiredKind = iota

	// FiredDeadline means the attached deadline timer's period elapsed
	// since its last fire.
	FiredDeadline
)

// String returns the kind name for logs and metrics labels.
func (k FiredKind) String() string {
	switch k {
	case FiredNotification:
		return "notification"
	case FiredDeadline:
		return "deadline"
	default:
		return "unknown"
	}
}

// Fired identifies one attachment that was ready when a wait returned.
// It carries no native token and needs no disposal; it is valid only
// until the next Wait call on the same WaitSet.
type Fired struct {
	ID   AttachmentID
	Kind FiredKind
}
