// Package metrics defines the Prometheus instrumentation surface for a
// martos node, grounded on the teacher's metrics.go (prometheus +
// promauto registration pattern, a package-level struct of pre-bound
// collectors initialized once).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "martos"

// Sync collects time-sync metrics, namespaced martos_sync_*.
var Sync = struct {
	PeerCount        prometheus.Gauge
	Quality          prometheus.Gauge
	CumulativeOffset prometheus.Gauge
	Converged        prometheus.Gauge
	CorrectionsTotal prometheus.Counter
	ParseErrorsTotal prometheus.Counter
}{
	PeerCount: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "peer_count",
		Help:      "Number of peers currently tracked by the sync algorithm.",
	}),
	Quality: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "quality",
		Help:      "Mean peer quality score (0.0 to 1.0).",
	}),
	CumulativeOffset: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "cumulative_offset_us",
		Help:      "Cumulative clock correction applied, in microseconds.",
	}),
	Converged: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "converged",
		Help:      "1 if the sync algorithm is converged, 0 otherwise.",
	}),
	CorrectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "corrections_total",
		Help:      "Total number of time corrections applied.",
	}),
	ParseErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "syncproto",
		Name:      "parse_errors_total",
		Help:      "Total number of sync frames dropped for failing to parse.",
	}),
}

// Executor collects scheduler metrics, namespaced martos_executor_*.
var Executor = struct {
	TicksTotal   prometheus.Counter
	TickDuration prometheus.Histogram
	TaskErrors   prometheus.Counter
}{
	TicksTotal: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "executor",
		Name:      "ticks_total",
		Help:      "Total number of scheduler ticks processed.",
	}),
	TickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "executor",
		Name:      "tick_duration_seconds",
		Help:      "Time spent executing a single scheduler tick.",
		Buckets:   prometheus.DefBuckets,
	}),
	TaskErrors: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "executor",
		Name:      "task_errors_total",
		Help:      "Total number of errors returned by task Setup/Loop calls.",
	}),
}
