// File: transport/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process-wide service directory: the stand-in for a shared-memory
// segment directory. Services rendezvous by name with open-or-create
// semantics; entries live for the process lifetime.

package transport

import (
	"sync"

	"github.com/patdhlk/ipcwait/pool"
)

type directory struct {
	mu     sync.Mutex
	events map[string]*eventState
	pubsub map[string]*pubsubState
}

var defaultDirectory = &directory{
	events: make(map[string]*eventState),
	pubsub: make(map[string]*pubsubState),
}

func (d *directory) eventService(name string) *eventState {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.events[name]
	if !ok {
		st = &eventState{name: name}
		d.events[name] = st
	}
	return st
}

// pubsubService opens or creates the named pub/sub state. alloc is only
// consulted on creation; the first opener decides the backing memory.
func (d *directory) pubsubService(name string, alloc pool.Allocator) *pubsubState {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.pubsub[name]
	if !ok {
		var opts []pool.Option
		if alloc != nil {
			opts = append(opts, pool.WithAllocator(alloc))
		}
		st = &pubsubState{name: name, pool: pool.New(opts...)}
		d.pubsub[name] = st
	}
	return st
}
