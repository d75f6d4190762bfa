// Package waitset
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WaitSet aggregates heterogeneous event sources (cross-process
// listeners, deadline timers) behind one bounded blocking wait.
//
// Readiness is level-triggered: a listener is ready while its queue is
// non-empty, a deadline timer is ready once its period elapsed since the
// last fire. Wait returns every ready attachment in one batch, in
// attachment-token order, without busy-polling the OS: the calling
// goroutine parks on a wake channel pinged by notifiers, the nearest
// deadline, and the caller's timeout.
//
// Drain discipline: after a notification fires, the caller must drain
// that listener (TryDequeue until empty) before waiting again; an
// undrained listener keeps the wait returning immediately. The WaitSet
// cannot enforce this; see poll.Drain for the explicit helper.
//
// Concurrency: the attachment set belongs to the goroutine performing
// Wait. Attaching or releasing guards while a Wait is in progress on
// another goroutine is unsupported and must be serialized by the caller.
package waitset
