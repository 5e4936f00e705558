// Package metrics counts tasks, steps and decision latency for a run.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one process on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	tasks     *prometheus.CounterVec
	steps     *prometheus.CounterVec
	decisions prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aitt_tasks_total",
				Help: "Tasks processed, by final status",
			},
			[]string{"status"},
		),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aitt_steps_total",
				Help: "Actions executed, by action kind and result",
			},
			[]string{"action", "result"},
		),
		decisions: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aitt_decision_seconds",
				Help:    "Latency of decision requests",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
			},
		),
	}
	m.registry.MustRegister(m.tasks, m.steps, m.decisions)
	return m
}

// TaskFinished records a task's final status, e.g. "finished" or "failed".
func (m *Metrics) TaskFinished(status string) {
	if m == nil {
		return
	}
	m.tasks.WithLabelValues(status).Inc()
}

// StepExecuted records one executed action. Failure results are collapsed
// into "failed" to keep label cardinality bounded.
func (m *Metrics) StepExecuted(action, result string) {
	if m == nil {
		return
	}
	if result != "success" {
		result = "failed"
	}
	m.steps.WithLabelValues(action, result).Inc()
}

// ObserveDecision records the duration of one decision request.
func (m *Metrics) ObserveDecision(d time.Duration) {
	if m == nil {
		return
	}
	m.decisions.Observe(d.Seconds())
}

// WriteFile writes all metrics in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Handler serves the metrics over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
