// Package poll
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Suspension-based adapters over non-blocking receive primitives.
//
// Bridge turns an instantaneous try-receive (sample receive, single
// wait-set poll) into a suspend-until-ready operation by bounded-interval
// re-polling. This is a deliberate design choice: the underlying
// primitives are genuinely non-blocking, and the fixed interval is the
// documented latency/CPU trade-off. Cancellation is cooperative and
// observed at suspension points only.
//
// Stream lifts a WaitSet's batched firings into a cancellable, single-use
// lazy sequence. A terminated stream never restarts; build a new one from
// the same WaitSet to resume.
package poll
