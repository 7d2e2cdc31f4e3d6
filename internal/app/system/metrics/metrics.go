// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for LedgerTransitions.
const (
	OutcomeApplied = "applied"
	OutcomeBlocked = "blocked"
	OutcomeFailed  = "failed"
	OutcomeInvalid = "invalid"
)

// Metrics holds the collectors used by the bookkeeping service and workers.
// Each instance owns its registry so tests can create fresh ones.
type Metrics struct {
	Registry *prometheus.Registry

	LedgerTransitions *prometheus.CounterVec // op, outcome
	PartialFailures   *prometheus.CounterVec // op, step
	PaymentsRecorded  prometheus.Counter
	UnknownFees       prometheus.Counter
	DriftDetected     prometheus.Gauge
	DriftRuns         prometheus.Counter
}

// New builds and registers the collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		LedgerTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutorhub",
			Subsystem: "ledger",
			Name:      "transitions_total",
			Help:      "Attendance ledger operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		PartialFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutorhub",
			Subsystem: "ledger",
			Name:      "partial_failures_total",
			Help:      "Ledger operations that failed after at least one write succeeded.",
		}, []string{"op", "step"}),
		PaymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tutorhub",
			Subsystem: "ledger",
			Name:      "payments_recorded_total",
			Help:      "Payment history entries appended.",
		}),
		UnknownFees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tutorhub",
			Subsystem: "ledger",
			Name:      "unknown_fee_lookups_total",
			Help:      "Fee lookups for groups neither live nor archived (fee resolved to 0).",
		}),
		DriftDetected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tutorhub",
			Subsystem: "drift",
			Name:      "students",
			Help:      "Students whose stored balance differed from attendance on the last drift check.",
		}),
		DriftRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tutorhub",
			Subsystem: "drift",
			Name:      "runs_total",
			Help:      "Completed drift check runs.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.LedgerTransitions,
		m.PartialFailures,
		m.PaymentsRecorded,
		m.UnknownFees,
		m.DriftDetected,
		m.DriftRuns,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
