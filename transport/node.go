// File: transport/node.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Node is the process-local root of the resource tree.

package transport

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patdhlk/ipcwait/api"
	"github.com/patdhlk/ipcwait/control"
	"github.com/patdhlk/ipcwait/handle"
	"github.com/patdhlk/ipcwait/pool"
)

// NodeOption configures a Node.
type NodeOption func(*Node)

// WithName labels the node in logs.
func WithName(name string) NodeOption {
	return func(n *Node) { n.name = name }
}

// WithLogger wires a zap logger; the default is a no-op logger.
func WithLogger(log *zap.Logger) NodeOption {
	return func(n *Node) {
		if log != nil {
			n.log = log
		}
	}
}

// WithMetrics wires telemetry counters into ports created by this node.
func WithMetrics(m *control.Metrics) NodeOption {
	return func(n *Node) { n.metrics = m }
}

// WithConfig overrides the runtime configuration (queue depths).
func WithConfig(cfg *control.Config) NodeOption {
	return func(n *Node) {
		if cfg != nil {
			n.cfg = cfg
		}
	}
}

// WithAllocator selects the payload allocator for pub/sub services this
// node creates first (e.g. pool.NewShmAllocator()).
func WithAllocator(a pool.Allocator) NodeOption {
	return func(n *Node) { n.alloc = a }
}

// WithProbes registers state probes for the node and the pools of its
// pub/sub services. The node probe is removed on Close.
func WithProbes(dp *control.DebugProbes) NodeOption {
	return func(n *Node) { n.probes = dp }
}

// Node owns every service and port created through it. Closing a node
// releases them all, newest first; the node handle itself is released
// last. All resource creation is bottom-up: node, then service, then
// port, then sample.
type Node struct {
	id      uuid.UUID
	name    string
	log     *zap.Logger
	metrics *control.Metrics
	cfg     *control.Config
	alloc   pool.Allocator
	probes  *control.DebugProbes

	mu       sync.Mutex
	cleanups []func()
	unprobes []func()

	reg *handle.Handle[uuid.UUID]
}

// NewNode creates a node with a fresh identity.
func NewNode(opts ...NodeOption) (*Node, error) {
	n := &Node{
		id:   uuid.New(),
		name: "node",
		log:  zap.NewNop(),
		cfg:  control.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.log = n.log.With(zap.String("node", n.id.String()))
	n.reg = handle.Acquire(n.id, func(uuid.UUID) {
		n.log.Debug("node released")
	})
	if n.probes != nil {
		n.unprobes = append(n.unprobes, n.probes.RegisterProbe("node/"+n.id.String(), func() any {
			return map[string]any{
				"name":  n.name,
				"ports": n.portCount(),
			}
		}))
	}
	n.log.Debug("node created", zap.String("name", n.name))
	return n, nil
}

// ID returns the node's unique identity.
func (n *Node) ID() uuid.UUID { return n.id }

// Name returns the node's label.
func (n *Node) Name() string { return n.name }

// EventService opens or creates the named eventing service.
func (n *Node) EventService(name string) (*EventService, error) {
	if n.reg.Released() {
		return nil, api.ErrServiceClosed
	}
	n.log.Debug("opened event service", zap.String("service", name))
	return &EventService{name: name, node: n, st: defaultDirectory.eventService(name)}, nil
}

// PubSubService opens or creates the named publish/subscribe service.
func (n *Node) PubSubService(name string) (*PubSubService, error) {
	if n.reg.Released() {
		return nil, api.ErrServiceClosed
	}
	st := defaultDirectory.pubsubService(name, n.alloc)
	if n.probes != nil {
		// Re-opening replaces the probe with one over the same shared
		// pool; the stale unregister run on Close is then a no-op.
		up := n.probes.RegisterProbe("service/"+name+"/pool", func() any {
			return st.pool.Stats()
		})
		n.mu.Lock()
		n.unprobes = append(n.unprobes, up)
		n.mu.Unlock()
	}
	n.log.Debug("opened pub/sub service", zap.String("service", name))
	return &PubSubService{name: name, node: n, st: st}, nil
}

// Close releases every port created through this node, newest first,
// then the node itself. Idempotent.
func (n *Node) Close() {
	n.mu.Lock()
	cleanups := n.cleanups
	n.cleanups = nil
	unprobes := n.unprobes
	n.unprobes = nil
	n.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	for _, up := range unprobes {
		up()
	}
	n.reg.Release()
}

// portCount reports how many ports were created through this node.
func (n *Node) portCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.cleanups)
}

// track registers a port release to run on Close. Port releases are
// idempotent, so an explicitly released port is safely re-released.
func (n *Node) track(release func()) {
	n.mu.Lock()
	n.cleanups = append(n.cleanups, release)
	n.mu.Unlock()
}
