// File: transport/event.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Eventing ports: notifiers enqueue identifiers, listeners drain them.

package transport

import (
	"sync"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/patdhlk/ipcwait/api"
	"github.com/patdhlk/ipcwait/handle"
)

// eventState is the shared, name-keyed rendezvous of one event service.
type eventState struct {
	name      string
	mu        sync.Mutex
	listeners []*Listener
}

func (st *eventState) add(l *Listener) {
	st.mu.Lock()
	st.listeners = append(st.listeners, l)
	st.mu.Unlock()
}

func (st *eventState) remove(l *Listener) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i, cand := range st.listeners {
		if cand == l {
			st.listeners = append(st.listeners[:i], st.listeners[i+1:]...)
			return
		}
	}
}

func (st *eventState) snapshot() []*Listener {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]*Listener(nil), st.listeners...)
}

// EventService creates eventing ports on one named service.
type EventService struct {
	name string
	node *Node
	st   *eventState
}

// Name returns the service name.
func (s *EventService) Name() string { return s.name }

// NewListener creates a listener port. The listener joins the service's
// fan-out set immediately and leaves it on Release.
func (s *EventService) NewListener() (*Listener, error) {
	if s.node.reg.Released() {
		return nil, api.ErrServiceClosed
	}
	l := &Listener{q: queue.New()}
	l.reg = handle.Acquire(l, func(raw *Listener) {
		s.st.remove(raw)
	})
	s.st.add(l)
	s.node.track(l.Release)
	s.node.log.Debug("listener created", zap.String("service", s.name))
	return l, nil
}

// NewNotifier creates a notifier port.
func (s *EventService) NewNotifier() (*Notifier, error) {
	if s.node.reg.Released() {
		return nil, api.ErrServiceClosed
	}
	nt := &Notifier{st: s.st, node: s.node}
	nt.reg = handle.Acquire(nt, nil)
	s.node.track(nt.Release)
	s.node.log.Debug("notifier created", zap.String("service", s.name))
	return nt, nil
}

// Listener drains event identifiers enqueued by the service's notifiers.
// Implements api.Listener: dequeuing is non-blocking and side-effecting,
// readiness is a non-empty queue. Using a released listener panics.
type Listener struct {
	mu     sync.Mutex
	q      *queue.Queue
	wakers []chan<- struct{}

	reg *handle.Handle[*Listener]
}

var _ api.Listener = (*Listener)(nil)

// TryDequeue removes and returns the next queued identifier.
func (l *Listener) TryDequeue() (api.EventID, bool) {
	l.reg.Raw()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.q.Length() == 0 {
		return 0, false
	}
	return l.q.Remove().(api.EventID), true
}

// Pending reports the queued identifier count.
func (l *Listener) Pending() int {
	l.reg.Raw()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.q.Length()
}

// AddWaker registers a coalescing wake channel.
func (l *Listener) AddWaker(w chan<- struct{}) {
	l.reg.Raw()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wakers = append(l.wakers, w)
}

// RemoveWaker deregisters a wake channel.
func (l *Listener) RemoveWaker(w chan<- struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, cand := range l.wakers {
		if cand == w {
			l.wakers = append(l.wakers[:i], l.wakers[i+1:]...)
			return
		}
	}
}

// Release detaches the listener from its service and drops its queue.
// Idempotent.
func (l *Listener) Release() {
	l.reg.Release()
}

func (l *Listener) enqueue(id api.EventID) {
	l.mu.Lock()
	l.q.Add(id)
	wakers := append([]chan<- struct{}(nil), l.wakers...)
	l.mu.Unlock()
	for _, w := range wakers {
		select {
		case w <- struct{}{}:
		default:
			// A pending ping already guarantees a rescan.
		}
	}
}

// Notifier enqueues event identifiers for every listener of its service.
type Notifier struct {
	st   *eventState
	node *Node

	reg *handle.Handle[*Notifier]
}

var _ api.Notifier = (*Notifier)(nil)

// Notify delivers id to all listeners currently on the service. Never
// blocks on slow consumers; using a released notifier panics.
func (nt *Notifier) Notify(id api.EventID) error {
	nt.reg.Raw()
	listeners := nt.st.snapshot()
	for _, l := range listeners {
		l.enqueue(id)
	}
	if nt.node.metrics != nil {
		nt.node.metrics.NotifyTotal.Add(float64(len(listeners)))
	}
	return nil
}

// Release invalidates the notifier. Idempotent.
func (nt *Notifier) Release() {
	nt.reg.Release()
}
