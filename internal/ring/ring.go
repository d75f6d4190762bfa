// File: internal/ring/ring.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ring is a bounded circular buffer with atomic head/tail, padded to
// prevent false sharing. Single-producer, single-consumer safe; callers
// needing displacement semantics serialize through EnqueueDisplace.
//
// Backs each subscriber's sample queue in the transport.

package ring

import "sync/atomic"

// Ring is a bounded SPSC circular buffer.
type Ring[T any] struct {
	data []T
	mask uint64
	head atomic.Uint64
	_    [64]byte // keep head and tail on separate cache lines
	tail atomic.Uint64
	_    [64]byte
}

// New allocates a ring of power-of-two size.
func New[T any](size uint64) *Ring[T] {
	if size == 0 || size&(size-1) != 0 {
		panic("ring: size must be a power of two")
	}
	return &Ring[T]{
		data: make([]T, size),
		mask: size - 1,
	}
}

// Enqueue adds item; returns false if full.
func (r *Ring[T]) Enqueue(item T) bool {
	head := r.head.Load()
	tail := r.tail.Load()
	if tail-head >= uint64(len(r.data)) {
		return false
	}
	r.data[tail&r.mask] = item
	r.tail.Store(tail + 1)
	return true
}

// EnqueueDisplace adds item, evicting the oldest entry when full. The
// displaced entry is returned with displaced=true so the caller can
// release any resources it owns. Caller must serialize against the
// consumer (the SPSC guarantee does not cover displacement).
func (r *Ring[T]) EnqueueDisplace(item T) (old T, displaced bool) {
	if r.Enqueue(item) {
		return old, false
	}
	old, _ = r.Dequeue()
	r.Enqueue(item)
	return old, true
}

// Dequeue removes and returns the oldest item; ok is false if empty.
func (r *Ring[T]) Dequeue() (T, bool) {
	head := r.head.Load()
	tail := r.tail.Load()
	if head >= tail {
		var zero T
		return zero, false
	}
	item := r.data[head&r.mask]
	var zero T
	r.data[head&r.mask] = zero // drop reference for GC
	r.head.Store(head + 1)
	return item, true
}

// Len returns the number of buffered items.
func (r *Ring[T]) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.data)
}
