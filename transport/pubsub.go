// File: transport/pubsub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Publish/subscribe ports: publishers loan pooled samples, subscribers
// receive them through a bounded ring.

package transport

import (
	"sync"

	"go.uber.org/zap"

	"github.com/patdhlk/ipcwait/api"
	"github.com/patdhlk/ipcwait/handle"
	"github.com/patdhlk/ipcwait/internal/ring"
	"github.com/patdhlk/ipcwait/pool"
)

// pubsubState is the shared, name-keyed rendezvous of one pub/sub
// service. The payload pool is shared by all publishers of the service.
type pubsubState struct {
	name string
	pool *pool.SamplePool
	mu   sync.Mutex
	subs []*Subscriber
}

func (st *pubsubState) add(s *Subscriber) {
	st.mu.Lock()
	st.subs = append(st.subs, s)
	st.mu.Unlock()
}

func (st *pubsubState) remove(s *Subscriber) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i, cand := range st.subs {
		if cand == s {
			st.subs = append(st.subs[:i], st.subs[i+1:]...)
			return
		}
	}
}

func (st *pubsubState) snapshot() []*Subscriber {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]*Subscriber(nil), st.subs...)
}

// PubSubService creates publish/subscribe ports on one named service.
type PubSubService struct {
	name string
	node *Node
	st   *pubsubState
}

// Name returns the service name.
func (s *PubSubService) Name() string { return s.name }

// NewPublisher creates a publisher port.
func (s *PubSubService) NewPublisher() (*Publisher, error) {
	if s.node.reg.Released() {
		return nil, api.ErrServiceClosed
	}
	p := &Publisher{st: s.st, node: s.node}
	p.reg = handle.Acquire(p, nil)
	s.node.track(p.Release)
	s.node.log.Debug("publisher created", zap.String("service", s.name))
	return p, nil
}

// NewSubscriber creates a subscriber port with a bounded sample queue
// (depth from the node config; overflow displaces the oldest sample).
func (s *PubSubService) NewSubscriber() (*Subscriber, error) {
	if s.node.reg.Released() {
		return nil, api.ErrServiceClosed
	}
	sub := &Subscriber{
		node: s.node,
		ring: ring.New[*Sample](uint64(s.node.cfg.SubscriberQueueDepth)),
	}
	sub.reg = handle.Acquire(sub, func(raw *Subscriber) {
		s.st.remove(raw)
		raw.drainAndRelease()
	})
	s.st.add(sub)
	s.node.track(sub.Release)
	s.node.log.Debug("subscriber created", zap.String("service", s.name))
	return sub, nil
}

// Publisher loans samples and fans them out to subscribers.
type Publisher struct {
	st   *pubsubState
	node *Node

	reg *handle.Handle[*Publisher]
}

// Loan borrows a writable sample of the given size from the service
// pool. The loan must end in exactly one Send or Release; using a
// released publisher panics.
func (p *Publisher) Loan(size int) (*SampleMut, error) {
	p.reg.Raw()
	if size <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "loan size must be positive").
			WithContext("size", size)
	}
	pl := newPayload(p.st.pool.Get(size), p.st.pool)
	sm := &SampleMut{pub: p}
	sm.reg = handle.Acquire(pl, func(raw *payload) { raw.release() })
	return sm, nil
}

// Release invalidates the publisher. Idempotent; outstanding loans stay
// valid until sent or released.
func (p *Publisher) Release() {
	p.reg.Release()
}

// SampleMut is a loaned, writable sample. Send consumes it; Release
// aborts the loan. Either way the underlying buffer returns to the pool
// once every receiving subscriber has released its view.
type SampleMut struct {
	pub *Publisher
	reg *handle.Handle[*payload]
}

// Bytes returns the writable payload. Panics after Send or Release.
func (sm *SampleMut) Bytes() []byte {
	return sm.reg.Raw().buf
}

// Send fans the sample out to every subscriber of the service and ends
// the loan. Never blocks on full subscribers: the oldest queued sample
// is displaced instead.
func (sm *SampleMut) Send() error {
	pl := sm.reg.Raw()
	for _, sub := range sm.pub.st.snapshot() {
		pl.retain()
		smp := &Sample{reg: handle.Acquire(pl, func(raw *payload) { raw.release() })}
		sub.push(smp)
	}
	sm.reg.Release() // drops the loan's own reference
	return nil
}

// Release aborts the loan without sending. Idempotent.
func (sm *SampleMut) Release() {
	sm.reg.Release()
}

// Subscriber receives samples through a bounded ring.
type Subscriber struct {
	node *Node
	mu   sync.Mutex
	ring *ring.Ring[*Sample]

	reg *handle.Handle[*Subscriber]
}

// TryReceive returns the oldest queued sample. Non-blocking; ok is false
// when the queue is empty. The caller owns the sample and must release
// it. Using a released subscriber panics.
func (s *Subscriber) TryReceive() (*Sample, bool) {
	s.reg.Raw()
	s.mu.Lock()
	defer s.mu.Unlock()
	smp, ok := s.ring.Dequeue()
	return smp, ok
}

// Pending reports the queued sample count.
func (s *Subscriber) Pending() int {
	s.reg.Raw()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Len()
}

// Release detaches the subscriber and releases every queued sample.
// Idempotent.
func (s *Subscriber) Release() {
	s.reg.Release()
}

func (s *Subscriber) push(smp *Sample) {
	s.mu.Lock()
	old, displaced := s.ring.EnqueueDisplace(smp)
	s.mu.Unlock()
	if displaced {
		old.Release()
		if s.node.metrics != nil {
			s.node.metrics.SamplesDropped.Inc()
		}
	}
}

func (s *Subscriber) drainAndRelease() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		smp, ok := s.ring.Dequeue()
		if !ok {
			return
		}
		smp.Release()
	}
}
