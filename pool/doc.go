// Package pool
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pooled payload memory for loaned samples.
//
// SamplePool hands out size-classed byte buffers so publisher loans and
// sample releases recycle memory instead of allocating per message. The
// backing memory comes from an Allocator: the portable default uses the
// Go heap; on Linux an allocator backed by memfd-created, mmap-shared
// segments stands in for the transport's shared-memory regions.
package pool
