package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	toolCalls     *prometheus.CounterVec
	toolLatency   *prometheus.HistogramVec
	parseDegrades *prometheus.CounterVec
	snapshots     *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		toolCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moneydoothas_tool_calls_total",
				Help: "Total number of remote tool invocations",
			},
			[]string{"tool", "outcome"},
		),
		toolLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moneydoothas_tool_call_duration_seconds",
				Help:    "Duration of remote tool invocations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		parseDegrades: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moneydoothas_tool_parse_degrades_total",
				Help: "Tool responses whose textual content failed JSON parsing and were returned raw",
			},
			[]string{"tool"},
		),
		snapshots: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moneydoothas_snapshots_published_total",
				Help: "Normalized snapshots published to the event bus",
			},
			[]string{"dataset"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moneydoothas_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordToolCall records a tool invocation outcome (ok, remote_error, transport_error).
func (r *Recorder) RecordToolCall(tool, outcome string) {
	r.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// RecordToolLatency records tool invocation latency in seconds.
func (r *Recorder) RecordToolLatency(tool string, seconds float64) {
	r.toolLatency.WithLabelValues(tool).Observe(seconds)
}

// RecordParseDegrade records a recovered content parse failure.
func (r *Recorder) RecordParseDegrade(tool string) {
	r.parseDegrades.WithLabelValues(tool).Inc()
}

// RecordSnapshotPublished records a published snapshot.
func (r *Recorder) RecordSnapshotPublished(dataset string) {
	r.snapshots.WithLabelValues(dataset).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
