// File: transport/sample.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reference-counted sample payloads.

package transport

import (
	"sync/atomic"

	"github.com/patdhlk/ipcwait/handle"
	"github.com/patdhlk/ipcwait/pool"
)

// payload is one loaned buffer shared zero-copy by the loan and every
// receiving subscriber. The buffer returns to its pool when the last
// reference is released.
type payload struct {
	buf  []byte
	refs atomic.Int32
	pool *pool.SamplePool
}

func newPayload(buf []byte, p *pool.SamplePool) *payload {
	pl := &payload{buf: buf, pool: p}
	pl.refs.Store(1) // the loan itself
	return pl
}

func (pl *payload) retain() {
	pl.refs.Add(1)
}

func (pl *payload) release() {
	if pl.refs.Add(-1) == 0 {
		pl.pool.Put(pl.buf)
		pl.buf = nil
	}
}

// Sample is one received, read-only view of a published payload. The
// receiver owns it and must call Release exactly once; release is
// idempotent through the handle. Bytes panics after Release.
type Sample struct {
	reg *handle.Handle[*payload]
}

// Bytes returns the payload view. Treat it as read-only: the bytes are
// shared with every other subscriber of the same publication.
func (s *Sample) Bytes() []byte {
	return s.reg.Raw().buf
}

// Release returns this view's reference; the last release recycles the
// buffer.
func (s *Sample) Release() {
	s.reg.Release()
}
