// File: poll/bridge.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded-interval re-polling bridge from try-receive to async receive.

package poll

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/patdhlk/ipcwait/api"
	"github.com/patdhlk/ipcwait/control"
)

// Forever disables the receive deadline; only data or cancellation
// terminates the operation.
const Forever time.Duration = -1

// DefaultInterval is the re-poll interval used unless WithInterval is
// given. Small enough to keep added latency negligible for IPC work,
// large enough to avoid burning a core per idle waiter.
const DefaultInterval = 10 * time.Millisecond

// BridgeOption configures a Bridge.
type BridgeOption func(*bridgeConfig)

type bridgeConfig struct {
	interval time.Duration
	log      *zap.Logger
	metrics  *control.Metrics
}

// WithInterval overrides the re-poll interval.
func WithInterval(d time.Duration) BridgeOption {
	return func(c *bridgeConfig) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithBridgeLogger wires a zap logger; the default is a no-op logger.
func WithBridgeLogger(log *zap.Logger) BridgeOption {
	return func(c *bridgeConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithBridgeMetrics wires telemetry counters.
func WithBridgeMetrics(m *control.Metrics) BridgeOption {
	return func(c *bridgeConfig) { c.metrics = m }
}

// Bridge adapts a non-blocking try-receive into a suspend-until-ready
// receive. It introduces no reordering: values surface in exactly the
// order try produces them.
type Bridge[T any] struct {
	try func() (T, bool)
	cfg bridgeConfig
}

// NewBridge wraps try, which must be non-blocking and side-effecting
// (each successful call consumes one value).
func NewBridge[T any](try func() (T, bool), opts ...BridgeOption) *Bridge[T] {
	cfg := bridgeConfig{interval: DefaultInterval, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Bridge[T]{try: try, cfg: cfg}
}

// Receive suspends until a value is available, the timeout elapses, or
// ctx is cancelled, whichever happens first.
//
// Outcomes: (value, true, nil) on data; (zero, false, nil) on timeout —
// an expected outcome, not an error; (zero, false, api.ErrCancelled) on
// cancellation. timeout semantics: Forever (any negative) disables the
// deadline, 0 performs a single poll. Data already available when the
// cancellation is observed still wins: each round polls before it checks
// the cancel signal, so cancellation never discards a ready value.
func (b *Bridge[T]) Receive(ctx context.Context, timeout time.Duration) (T, bool, error) {
	var zero T
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	timer := time.NewTimer(b.cfg.interval)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		if v, ok := b.try(); ok {
			return v, true, nil
		}
		if err := ctx.Err(); err != nil {
			return zero, false, b.cancelled(err)
		}

		now := time.Now()
		if timeout == 0 || (timeout > 0 && !now.Before(deadline)) {
			return zero, false, nil
		}

		sleep := b.cfg.interval
		if timeout > 0 {
			if rem := deadline.Sub(now); rem < sleep {
				sleep = rem
			}
		}
		timer.Reset(sleep)

		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			// Final poll: a value that arrived before the cancellation
			// was observed is delivered, not discarded.
			if v, ok := b.try(); ok {
				return v, true, nil
			}
			return zero, false, b.cancelled(ctx.Err())
		case <-timer.C:
		}
	}
}

func (b *Bridge[T]) cancelled(cause error) error {
	if b.cfg.metrics != nil {
		b.cfg.metrics.CancelsTotal.Inc()
	}
	b.cfg.log.Debug("receive cancelled", zap.Error(cause))
	return api.ErrCancelled
}
