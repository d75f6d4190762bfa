//go:build linux

// File: pool/shm_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// memfd-backed shared-memory allocator. Each allocation is one
// mmap-shared segment whose fd could be passed to a cooperating process;
// within this module it stands in for the transport's shared-memory
// payload regions.

package pool

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

type shmSegment struct {
	fd   int
	data []byte
}

// ShmAllocator allocates payload buffers from memfd-created, mmap-shared
// segments. Falls back to the heap when the kernel refuses.
type ShmAllocator struct {
	mu   sync.Mutex
	segs map[uintptr]shmSegment
}

// NewShmAllocator creates a shared-memory-backed allocator.
func NewShmAllocator() *ShmAllocator {
	return &ShmAllocator{segs: make(map[uintptr]shmSegment)}
}

// Alloc maps a new shared segment of at least size bytes and returns a
// size-length view into it.
func (a *ShmAllocator) Alloc(size int) []byte {
	if size <= 0 {
		size = 1
	}
	fd, err := unix.MemfdCreate("ipcwait-sample", unix.MFD_CLOEXEC)
	if err != nil {
		return make([]byte, size)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return make([]byte, size)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return make([]byte, size)
	}

	a.mu.Lock()
	a.segs[uintptr(unsafe.Pointer(&data[0]))] = shmSegment{fd: fd, data: data}
	a.mu.Unlock()
	return data
}

// Free unmaps the segment backing buf. Heap-fallback buffers are simply
// released to the garbage collector.
func (a *ShmAllocator) Free(buf []byte) {
	if len(buf) == 0 {
		return
	}
	key := uintptr(unsafe.Pointer(&buf[0]))

	a.mu.Lock()
	seg, ok := a.segs[key]
	if ok {
		delete(a.segs, key)
	}
	a.mu.Unlock()
	if !ok {
		return
	}
	_ = unix.Munmap(seg.data)
	_ = unix.Close(seg.fd)
}

// Segments reports live mapped segments, for leak checks in tests.
func (a *ShmAllocator) Segments() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.segs)
}

// Close unmaps every live segment. Outstanding buffers become invalid;
// callers must release all samples first.
func (a *ShmAllocator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var firstErr error
	for key, seg := range a.segs {
		if err := unix.Munmap(seg.data); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("munmap: %w", err)
		}
		_ = unix.Close(seg.fd)
		delete(a.segs, key)
	}
	return firstErr
}
