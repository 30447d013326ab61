// Package metrics exposes workflow counters over Prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives one observation per service operation.
type Recorder interface {
	Observe(ctx context.Context, operation string, err error, duration time.Duration)
	RowsChanged(operation string, rows, subscriptions int)
	StatusDerived(status string)
}

type PrometheusRecorder struct {
	registry  *prometheus.Registry
	ops       *prometheus.CounterVec
	durations *prometheus.HistogramVec
	rows      *prometheus.CounterVec
	derived   *prometheus.CounterVec
}

// NewPrometheusRecorder registers its collectors on a private registry so
// tests can build as many recorders as they like.
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mealbox",
			Name:      "workflow_operations_total",
			Help:      "Workflow operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mealbox",
			Name:      "workflow_operation_duration_seconds",
			Help:      "Time spent in a workflow operation including its transaction.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mealbox",
			Name:      "workflow_rows_changed_total",
			Help:      "Rows written by workflow operations.",
		}, []string{"operation", "table"}),
		derived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mealbox",
			Name:      "status_derivations_total",
			Help:      "Derived customer statuses served.",
		}, []string{"status"}),
	}
	r.registry.MustRegister(
		r.ops, r.durations, r.rows, r.derived,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *PrometheusRecorder) Observe(_ context.Context, operation string, err error, duration time.Duration) {
	if operation == "" {
		return
	}
	r.ops.WithLabelValues(operation, Outcome(err)).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) RowsChanged(operation string, rows, subscriptions int) {
	if rows > 0 {
		r.rows.WithLabelValues(operation, "delivery_schedules").Add(float64(rows))
	}
	if subscriptions > 0 {
		r.rows.WithLabelValues(operation, "subscriptions").Add(float64(subscriptions))
	}
}

func (r *PrometheusRecorder) StatusDerived(status string) {
	r.derived.WithLabelValues(status).Inc()
}

func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *PrometheusRecorder) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}

type nopRecorder struct{}

func (nopRecorder) Observe(context.Context, string, error, time.Duration) {}
func (nopRecorder) RowsChanged(string, int, int)                          {}
func (nopRecorder) StatusDerived(string)                                  {}

// Nop discards everything.
func Nop() Recorder { return nopRecorder{} }
