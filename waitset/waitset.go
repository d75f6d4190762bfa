// File: waitset/waitset.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-capacity event source aggregation with a single blocking wait.

package waitset

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/patdhlk/ipcwait/api"
	"github.com/patdhlk/ipcwait/control"
)

// Forever makes Wait block until a source fires or an interrupt arrives.
const Forever time.Duration = -1

// Option configures a WaitSet.
type Option func(*WaitSet)

// WithLogger wires a zap logger; the default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(ws *WaitSet) {
		if log != nil {
			ws.log = log
		}
	}
}

// WithMetrics wires telemetry counters; the default records nothing.
func WithMetrics(m *control.Metrics) Option {
	return func(ws *WaitSet) { ws.metrics = m }
}

// WithProbes registers a state probe named "waitset/<name>" exposing
// the live attachment count. The probe is removed on Release.
func WithProbes(dp *control.DebugProbes, name string) Option {
	return func(ws *WaitSet) {
		if dp != nil {
			ws.probes, ws.probeName = dp, "waitset/"+name
		}
	}
}

// WaitSet multiplexes attached event sources behind one blocking wait.
// Capacity is fixed at creation; attach fails once it is reached.
type WaitSet struct {
	capacity int
	log      *zap.Logger
	metrics  *control.Metrics

	// wake is pinged by notifiers of every attached listener; a single
	// coalescing channel is enough because readiness is level-triggered
	// and every wake-up triggers a full rescan.
	wake      chan struct{}
	interrupt chan struct{}
	intOnce   sync.Once

	probes    *control.DebugProbes
	probeName string
	unprobe   func()

	// mu serializes attach/detach; Wait reads guards without locking,
	// which is safe under the documented single-goroutine precondition.
	mu       sync.Mutex
	guards   []*Guard
	nextID   api.AttachmentID
	released bool
}

// New creates a WaitSet holding at most capacity attachments.
func New(capacity int, opts ...Option) (*WaitSet, error) {
	if capacity <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "waitset capacity must be positive").
			WithContext("capacity", capacity)
	}
	ws := &WaitSet{
		capacity:  capacity,
		log:       zap.NewNop(),
		wake:      make(chan struct{}, 1),
		interrupt: make(chan struct{}),
		nextID:    1,
	}
	for _, opt := range opts {
		opt(ws)
	}
	if ws.probes != nil {
		ws.unprobe = ws.probes.RegisterProbe(ws.probeName, func() any {
			return map[string]any{
				"capacity":    ws.capacity,
				"attachments": ws.Len(),
			}
		})
	}
	return ws, nil
}

// Capacity returns the fixed attachment capacity.
func (ws *WaitSet) Capacity() int { return ws.capacity }

// Len returns the number of live attachments.
func (ws *WaitSet) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.guards)
}

// AttachNotification registers a listener. The resulting guard detaches
// it on Release. Fails with api.ErrCapacityExceeded when full and
// api.ErrAlreadyAttached when the listener is already registered.
func (ws *WaitSet) AttachNotification(l api.Listener) (*Guard, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.released {
		panic("waitset: attach on released WaitSet")
	}
	if len(ws.guards) >= ws.capacity {
		return nil, api.ErrCapacityExceeded
	}
	for _, g := range ws.guards {
		if g.listener == l {
			return nil, api.ErrAlreadyAttached
		}
	}
	g := ws.newGuard(l, 0)
	l.AddWaker(ws.wake)
	ws.log.Debug("attached notification source",
		zap.Uint64("attachment", uint64(g.id)))
	return g, nil
}

// AttachDeadline registers a deadline timer with the given period. The
// timer first fires one period after attachment and re-arms each time it
// is reported.
func (ws *WaitSet) AttachDeadline(period time.Duration) (*Guard, error) {
	if period <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "deadline period must be positive").
			WithContext("period", period)
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.released {
		panic("waitset: attach on released WaitSet")
	}
	if len(ws.guards) >= ws.capacity {
		return nil, api.ErrCapacityExceeded
	}
	g := ws.newGuard(nil, period)
	g.lastFire = time.Now()
	ws.log.Debug("attached deadline source",
		zap.Uint64("attachment", uint64(g.id)),
		zap.Duration("period", period))
	return g, nil
}

// Wait blocks until at least one attachment is ready, timeout elapses,
// or Interrupt is called. timeout semantics: Forever (any negative
// value) blocks indefinitely, 0 performs a single non-blocking poll.
// A timeout is an expected outcome: the result is empty and err is nil.
// Every attachment ready at return time is reported, in token order.
func (ws *WaitSet) Wait(timeout time.Duration) ([]api.Fired, error) {
	if ws.isReleased() {
		panic("waitset: wait on released WaitSet")
	}
	if ws.metrics != nil {
		defer ws.metrics.WaitsTotal.Inc()
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		now := time.Now()
		if fired := ws.scan(now); len(fired) > 0 {
			ws.countFired(fired)
			return fired, nil
		}

		// Expired budget: report the timeout as an empty, error-free
		// result so callers can tell "nothing happened" from failure.
		if timeout == 0 || (timeout > 0 && !now.Before(deadline)) {
			if ws.metrics != nil {
				ws.metrics.WaitTimeoutsTotal.Inc()
			}
			return nil, nil
		}

		sleep := time.Hour
		if timeout > 0 {
			sleep = deadline.Sub(now)
		}
		if next, ok := ws.nextDeadline(now); ok && next < sleep {
			sleep = next
		}
		timer.Reset(sleep)

		select {
		case <-ws.wake:
			// A notifier pinged; rescan. Coalesced or stale pings just
			// cause one extra scan (internal retry, invisible to caller).
			stopTimer(timer)
		case <-timer.C:
			// Nearest deadline or caller timeout; the scan decides which.
		case <-ws.interrupt:
			stopTimer(timer)
			if ws.metrics != nil {
				ws.metrics.InterruptsTotal.Inc()
			}
			ws.log.Debug("wait interrupted")
			return nil, api.ErrInterrupted
		}
	}
}

// Interrupt terminates any in-progress and future Wait calls with
// api.ErrInterrupted. Used on shutdown; safe to call more than once.
func (ws *WaitSet) Interrupt() {
	ws.intOnce.Do(func() { close(ws.interrupt) })
}

// Release marks the WaitSet unusable. All guards must be released first:
// a live guard referencing a dead WaitSet is a lifetime bug, so Release
// panics instead of returning an error.
func (ws *WaitSet) Release() {
	ws.mu.Lock()
	if ws.released {
		ws.mu.Unlock()
		return
	}
	if len(ws.guards) > 0 {
		ws.mu.Unlock()
		panic("waitset: released with live attachment guards")
	}
	ws.released = true
	unprobe := ws.unprobe
	ws.unprobe = nil
	// The probe reads Len under ws.mu, so it unregisters outside the lock.
	ws.mu.Unlock()

	ws.Interrupt()
	if unprobe != nil {
		unprobe()
	}
}

func (ws *WaitSet) isReleased() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.released
}

// scan reports every ready attachment at instant now, re-arming fired
// deadline timers. Guards are in token order by construction.
func (ws *WaitSet) scan(now time.Time) []api.Fired {
	var fired []api.Fired
	for _, g := range ws.guards {
		switch {
		case g.listener != nil:
			if g.listener.Pending() > 0 {
				fired = append(fired, api.Fired{ID: g.id, Kind: api.FiredNotification})
			}
		case now.Sub(g.lastFire) >= g.period:
			g.lastFire = now
			fired = append(fired, api.Fired{ID: g.id, Kind: api.FiredDeadline})
		}
	}
	return fired
}

// nextDeadline returns the time until the earliest pending deadline.
func (ws *WaitSet) nextDeadline(now time.Time) (time.Duration, bool) {
	var min time.Duration
	found := false
	for _, g := range ws.guards {
		if g.listener != nil {
			continue
		}
		d := g.period - now.Sub(g.lastFire)
		if d < 0 {
			d = 0
		}
		if !found || d < min {
			min, found = d, true
		}
	}
	return min, found
}

func (ws *WaitSet) countFired(fired []api.Fired) {
	if ws.metrics == nil {
		return
	}
	for _, f := range fired {
		ws.metrics.FiredTotal.WithLabelValues(f.Kind.String()).Inc()
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
