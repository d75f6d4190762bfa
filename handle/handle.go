// File: handle/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Exclusively-owned wrappers over opaque native resources.
//
// Every cross-process resource (node, service, port, sample, listener,
// notifier, wait-set attachment) is held through a Handle whose drop
// function runs exactly once, no matter how many times Release is called
// or from how many goroutines. Go has no deterministic destructors, so
// release is explicit; pair Acquire with a deferred Release on every
// exit path. Forgotten releases show up as a non-zero Live count, which
// tests assert on.

package handle

import (
	"fmt"
	"sync/atomic"
)

// live counts handles acquired but not yet released, process-wide.
var live atomic.Int64

// Live reports the number of outstanding handles. Intended for leak
// assertions in tests; a long-lived process naturally holds handles.
func Live() int64 {
	return live.Load()
}

// Handle owns one opaque native token of type T and guarantees its drop
// function is invoked at most once. A Handle has exactly one logical
// owner; sharing across goroutines is permitted only for operations
// documented as read-only.
type Handle[T any] struct {
	raw      T
	drop     func(T)
	released atomic.Bool
}

// Acquire takes ownership of raw. drop is the matching release call for
// the resource's creation call; nil is allowed for resources whose
// release is a no-op.
func Acquire[T any](raw T, drop func(T)) *Handle[T] {
	live.Add(1)
	return &Handle[T]{raw: raw, drop: drop}
}

// Raw returns the owned token for use in native calls. Raw panics after
// Release: dereferencing a released token is a lifetime bug no caller
// can recover from.
func (h *Handle[T]) Raw() T {
	if h.released.Load() {
		panic(fmt.Sprintf("handle: use after release of %T", h.raw))
	}
	return h.raw
}

// Released reports whether the handle has been released. Read-only and
// safe to call from any goroutine.
func (h *Handle[T]) Released() bool {
	return h.released.Load()
}

// Release invokes the drop function exactly once. Subsequent calls are
// no-ops, including concurrent ones.
func (h *Handle[T]) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	live.Add(-1)
	if h.drop != nil {
		h.drop(h.raw)
	}
}
