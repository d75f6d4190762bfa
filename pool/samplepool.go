// File: pool/samplepool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Size-classed buffer pool feeding zero-copy sample loans.

package pool

// Allocator provides raw payload memory for pool refills.
type Allocator interface {
	// Alloc returns a buffer with len == size.
	Alloc(size int) []byte
	// Free returns a buffer obtained from Alloc that will not be pooled.
	Free(buf []byte)
}

// HeapAllocator is the portable default Allocator.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(size int) []byte { return make([]byte, size) }
func (HeapAllocator) Free([]byte)           {}

// classSizes are the loanable size classes. Requests above the largest
// class bypass pooling entirely.
var classSizes = [...]int{256, 1 << 10, 4 << 10, 16 << 10, 64 << 10}

// freeListDepth bounds retained buffers per class; surplus goes back to
// the allocator.
const freeListDepth = 128

// SamplePool recycles payload buffers by size class.
type SamplePool struct {
	alloc Allocator
	free  [len(classSizes)]chan []byte
}

// Option configures a SamplePool.
type Option func(*SamplePool)

// WithAllocator overrides the backing allocator.
func WithAllocator(a Allocator) Option {
	return func(p *SamplePool) {
		if a != nil {
			p.alloc = a
		}
	}
}

// New creates a SamplePool.
func New(opts ...Option) *SamplePool {
	p := &SamplePool{alloc: HeapAllocator{}}
	for i := range p.free {
		p.free[i] = make(chan []byte, freeListDepth)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns a buffer with len == size. The capacity is the size class,
// so Put can route the buffer back without extra bookkeeping.
func (p *SamplePool) Get(size int) []byte {
	cls, ok := classFor(size)
	if !ok {
		return p.alloc.Alloc(size)
	}
	select {
	case buf := <-p.free[cls]:
		return buf[:size]
	default:
		return p.alloc.Alloc(classSizes[cls])[:size]
	}
}

// Put recycles a buffer obtained from Get. Buffers above the largest
// class, and surplus beyond the free-list depth, return to the allocator.
func (p *SamplePool) Put(buf []byte) {
	if buf == nil {
		return
	}
	cls, ok := classOfCap(cap(buf))
	if !ok {
		p.alloc.Free(buf[:cap(buf)])
		return
	}
	select {
	case p.free[cls] <- buf[:cap(buf)]:
	default:
		p.alloc.Free(buf[:cap(buf)])
	}
}

// Stats reports the retained buffer count per size class, keyed by
// class size in bytes.
func (p *SamplePool) Stats() map[int]int {
	out := make(map[int]int, len(classSizes))
	for i, c := range classSizes {
		out[c] = len(p.free[i])
	}
	return out
}

func classFor(size int) (int, bool) {
	for i, c := range classSizes {
		if size <= c {
			return i, true
		}
	}
	return 0, false
}

func classOfCap(c int) (int, bool) {
	for i, s := range classSizes {
		if c == s {
			return i, true
		}
	}
	return 0, false
}
