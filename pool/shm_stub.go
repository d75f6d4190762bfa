//go:build !linux

// File: pool/shm_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable stand-in for the Linux shared-memory allocator.

package pool

// ShmAllocator degrades to heap allocation on platforms without memfd.
type ShmAllocator struct{}

// NewShmAllocator creates the heap-backed stand-in.
func NewShmAllocator() *ShmAllocator { return &ShmAllocator{} }

func (*ShmAllocator) Alloc(size int) []byte {
	if size <= 0 {
		size = 1
	}
	return make([]byte, size)
}

func (*ShmAllocator) Free([]byte) {}

// Segments always reports zero; nothing is mapped.
func (*ShmAllocator) Segments() int { return 0 }

// Close is a no-op.
func (*ShmAllocator) Close() error { return nil }
