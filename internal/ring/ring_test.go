// File: internal/ring/ring_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ring_test

import (
	"testing"

	"github.com/patdhlk/ipcwait/internal/ring"
)

func TestEnqueueDequeueOrder(t *testing.T) {
	r := ring.New[int](4)
	for i := 1; i <= 4; i++ {
		if !r.Enqueue(i) {
			t.Fatalf("Enqueue(%d) failed below capacity", i)
		}
	}
	if r.Enqueue(5) {
		t.Error("Enqueue succeeded on full ring")
	}
	for i := 1; i <= 4; i++ {
		v, ok := r.Dequeue()
		if !ok || v != i {
			t.Fatalf("Dequeue = (%d, %v), want (%d, true)", v, ok, i)
		}
	}
	if _, ok := r.Dequeue(); ok {
		t.Error("Dequeue succeeded on empty ring")
	}
}

func TestEnqueueDisplaceEvictsOldest(t *testing.T) {
	r := ring.New[int](2)
	r.Enqueue(1)
	r.Enqueue(2)

	old, displaced := r.EnqueueDisplace(3)
	if !displaced || old != 1 {
		t.Fatalf("EnqueueDisplace = (%d, %v), want (1, true)", old, displaced)
	}

	v, _ := r.Dequeue()
	if v != 2 {
		t.Errorf("first Dequeue = %d, want 2", v)
	}
	v, _ = r.Dequeue()
	if v != 3 {
		t.Errorf("second Dequeue = %d, want 3", v)
	}
}

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(6) did not panic")
		}
	}()
	ring.New[int](6)
}
