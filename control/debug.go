// File: control/debug.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Named runtime-state probes. Resources register a probe when created
// and unregister it when released, so a dump reflects only live state.

package control

import "sync"

// probeEntry pins the identity of one registration so a stale
// unregister cannot remove a newer probe under the same name.
type probeEntry struct {
	fn func() any
}

// DebugProbes is a registry of named state probes.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]*probeEntry
}

// NewDebugProbes creates an empty probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{probes: make(map[string]*probeEntry)}
}

// RegisterProbe installs fn under name, replacing any previous probe
// with that name, and returns the matching unregister function. The
// unregister function is idempotent and removes only its own
// registration, never a replacement made after it.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) func() {
	e := &probeEntry{fn: fn}
	dp.mu.Lock()
	dp.probes[name] = e
	dp.mu.Unlock()
	return func() {
		dp.mu.Lock()
		defer dp.mu.Unlock()
		if dp.probes[name] == e {
			delete(dp.probes, name)
		}
	}
}

// DumpState evaluates every registered probe.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for name, e := range dp.probes {
		out[name] = e.fn()
	}
	return out
}
