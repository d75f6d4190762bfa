// File: pool/samplepool_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool_test

import (
	"testing"

	"github.com/patdhlk/ipcwait/pool"
)

func TestGetPutReuse(t *testing.T) {
	p := pool.New()

	b1 := p.Get(100)
	if len(b1) != 100 {
		t.Fatalf("Get(100) len = %d", len(b1))
	}
	if cap(b1) < 256 {
		t.Fatalf("Get(100) cap = %d, want class size 256", cap(b1))
	}
	b1[0] = 0xAB
	p.Put(b1)

	b2 := p.Get(64)
	if cap(b2) != cap(b1) {
		t.Error("pooled buffer was not reused within its class")
	}
}

func TestOversizedRequestBypassesPool(t *testing.T) {
	p := pool.New()

	b := p.Get(1 << 20)
	if len(b) != 1<<20 {
		t.Fatalf("oversized Get len = %d", len(b))
	}
	p.Put(b) // must not panic, returns to allocator
}

type countingAllocator struct {
	allocs int
	frees  int
}

func (a *countingAllocator) Alloc(size int) []byte {
	a.allocs++
	return make([]byte, size)
}

func (a *countingAllocator) Free([]byte) { a.frees++ }

func TestAllocatorOption(t *testing.T) {
	a := &countingAllocator{}
	p := pool.New(pool.WithAllocator(a))

	b := p.Get(512)
	if a.allocs != 1 {
		t.Fatalf("allocs = %d, want 1", a.allocs)
	}
	p.Put(b)

	// Same class: served from the free list, no new allocation.
	_ = p.Get(512)
	if a.allocs != 1 {
		t.Errorf("allocs = %d after reuse, want 1", a.allocs)
	}
}

func TestShmAllocatorRoundTrip(t *testing.T) {
	a := pool.NewShmAllocator()
	defer a.Close()

	buf := a.Alloc(4096)
	if len(buf) != 4096 {
		t.Fatalf("Alloc(4096) len = %d", len(buf))
	}
	buf[0], buf[4095] = 0x01, 0x02
	a.Free(buf)

	if n := a.Segments(); n != 0 {
		t.Errorf("Segments = %d after free, want 0", n)
	}
}
