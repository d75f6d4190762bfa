// File: poll/stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stream presents wait-set firings as a cancellable lazy sequence.

package poll

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/patdhlk/ipcwait/api"
	"github.com/patdhlk/ipcwait/waitset"
)

// DefaultStreamInterval is the wait slice used between cancellation
// checks. The stream waits in bounded slices so Cancel is observed
// within one slice even when no source ever fires.
const DefaultStreamInterval = 50 * time.Millisecond

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithStreamInterval overrides the cancellation-check wait slice.
func WithStreamInterval(d time.Duration) StreamOption {
	return func(s *Stream) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithStreamLogger wires a zap logger; the default is a no-op logger.
func WithStreamLogger(log *zap.Logger) StreamOption {
	return func(s *Stream) {
		if log != nil {
			s.log = log
		}
	}
}

// Stream is a single-use, cancellable sequence of wait-set firings. The
// sequence is infinite until Cancel or a fatal WaitSet error; once
// terminated it never produces again. The WaitSet stays usable; build a
// new Stream to resume iterating.
//
// The Stream drives WaitSet.Wait from its own goroutine, so the caller
// must not call Wait, attach, or detach on the same WaitSet while the
// stream is live (the usual single-waiter precondition).
type Stream struct {
	ws       *waitset.WaitSet
	interval time.Duration
	log      *zap.Logger

	out      chan api.Result[api.Fired]
	cancelCh chan struct{}
	once     sync.Once
	done     chan struct{}

	mu  sync.Mutex
	err error
}

var _ api.Cancelable = (*Stream)(nil)

// NewStream starts the sequence immediately.
func NewStream(ws *waitset.WaitSet, opts ...StreamOption) *Stream {
	s := &Stream{
		ws:       ws,
		interval: DefaultStreamInterval,
		log:      zap.NewNop(),
		out:      make(chan api.Result[api.Fired]),
		cancelCh: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

func (s *Stream) run() {
	defer close(s.done)
	defer close(s.out)
	for {
		select {
		case <-s.cancelCh:
			s.log.Debug("stream cancelled")
			return
		default:
		}

		fired, err := s.ws.Wait(s.interval)
		if err != nil {
			// Interrupted or fatal: the sequence terminates with an
			// error signal, delivered once, then closes.
			s.setErr(err)
			s.log.Debug("stream terminated", zap.Error(err))
			select {
			case s.out <- api.Result[api.Fired]{Err: err}:
			case <-s.cancelCh:
			}
			return
		}
		for _, f := range fired {
			select {
			case s.out <- api.Result[api.Fired]{Value: f}:
			case <-s.cancelCh:
				s.log.Debug("stream cancelled mid-batch")
				return
			}
		}
	}
}

// Events exposes the raw sequence. The channel closes on termination;
// a final element may carry the terminal error. Consume either through
// Events or Next, not both.
func (s *Stream) Events() <-chan api.Result[api.Fired] {
	return s.out
}

// Next blocks for the next firing. It returns api.ErrCancelled when ctx
// cancels first, the terminal error after a fatal stop, and
// api.ErrTerminated once the stream has shut down cleanly.
func (s *Stream) Next(ctx context.Context) (api.Fired, error) {
	var zero api.Fired
	select {
	case r, ok := <-s.out:
		if !ok {
			if err := s.Err(); err != nil {
				return zero, err
			}
			return zero, api.ErrTerminated
		}
		if r.Err != nil {
			return zero, r.Err
		}
		return r.Value, nil
	case <-ctx.Done():
		return zero, api.ErrCancelled
	}
}

// Cancel requests cooperative termination; it returns immediately. The
// pump observes the signal within one wait slice. Safe to call twice.
func (s *Stream) Cancel() {
	s.once.Do(func() { close(s.cancelCh) })
}

// Done is closed once the pump goroutine has fully stopped.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Err reports why the stream terminated; nil while live or after a clean
// cancel.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
