// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Contract layer for the ipcwait event-multiplexing core.
//
// Defines the shared value types (event identifiers, attachment tokens,
// firing records), the error taxonomy used by every fallible operation,
// and the transport-facing capabilities (Listener, Notifier) the core
// consumes from a shared-memory IPC runtime.
//
// Implementations live in the waitset, poll, and transport packages.
// This package carries no logic beyond error formatting.
package api
