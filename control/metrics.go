// File: control/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Prometheus collectors for wait-set and transport telemetry.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates all collectors of the library. Register it on a
// caller-owned registry; constructing two Metrics on one registry panics
// (standard Prometheus duplicate-registration behavior).
type Metrics struct {
	WaitsTotal        prometheus.Counter
	FiredTotal        *prometheus.CounterVec
	WaitTimeoutsTotal prometheus.Counter
	InterruptsTotal   prometheus.Counter
	CancelsTotal      prometheus.Counter
	AttachmentsActive prometheus.Gauge
	NotifyTotal       prometheus.Counter
	SamplesDropped    prometheus.Counter
}

// NewMetrics builds and registers all collectors on reg. Pass
// prometheus.NewRegistry() in tests to keep registrations isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WaitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ipcwait",
			Name:      "waits_total",
			Help:      "Completed WaitSet.Wait calls.",
		}),
		FiredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ipcwait",
			Name:      "fired_total",
			Help:      "Attachments reported ready, by kind.",
		}, []string{"kind"}),
		WaitTimeoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ipcwait",
			Name:      "wait_timeouts_total",
			Help:      "Wait calls that returned empty on timeout.",
		}),
		InterruptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ipcwait",
			Name:      "interrupts_total",
			Help:      "Wait calls terminated by an interrupt signal.",
		}),
		CancelsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ipcwait",
			Name:      "cancels_total",
			Help:      "Async receive operations terminated by cancellation.",
		}),
		AttachmentsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ipcwait",
			Name:      "attachments_active",
			Help:      "Guards currently attached across all WaitSets.",
		}),
		NotifyTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ipcwait",
			Name:      "notifications_total",
			Help:      "Event identifiers delivered to listeners.",
		}),
		SamplesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ipcwait",
			Name:      "samples_dropped_total",
			Help:      "Samples displaced from full subscriber queues.",
		}),
	}
	reg.MustRegister(
		m.WaitsTotal, m.FiredTotal, m.WaitTimeoutsTotal, m.InterruptsTotal,
		m.CancelsTotal, m.AttachmentsActive, m.NotifyTotal, m.SamplesDropped,
	)
	return m
}
