// Package middleware provides cross-cutting concerns for the credit
// decision service.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-underwrite/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides real-time monitoring of decision outcomes,
// pipeline stage performance, and HTTP traffic for the scoring
// service.
type PrometheusMetrics struct {
	decisionsTotal *prometheus.CounterVec
	stageTotal     *prometheus.CounterVec
	stageLatency   *prometheus.HistogramVec
	httpTotal      *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	batchRecords   prometheus.Histogram
	systemGauges   *prometheus.GaugeVec
	operationTotal *prometheus.CounterVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and
// registers all metrics with the given registerer. A nil registerer
// selects the default global registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		decisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "underwrite_decisions_total",
				Help: "Total credit decisions issued, by decision band.",
			},
			[]string{"decision"},
		),
		stageTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "underwrite_pipeline_stage_total",
				Help: "Total pipeline stage executions, by stage and outcome.",
			},
			[]string{"stage", "status"},
		),
		stageLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "underwrite_pipeline_stage_duration_seconds",
				Help:    "Execution time of scoring pipeline stages.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		httpTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "underwrite_http_requests_total",
				Help: "Total HTTP requests served, by route and status code.",
			},
			[]string{"method", "path", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "underwrite_http_request_duration_seconds",
				Help:    "HTTP request handling time.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		batchRecords: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "underwrite_batch_records",
				Help:    "Distribution of record counts in batch requests.",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
			},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "underwrite_system_state",
				Help: "Current system state values for the scoring service.",
			},
			[]string{"metric"},
		),
		operationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "underwrite_operations_total",
				Help: "Total operations performed by the scoring service.",
			},
			[]string{"operation", "status"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram. HTTP request latency is
// routed to its own histogram; every other operation is treated as a
// pipeline stage.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	if operation == "http_request" {
		pm.httpLatency.WithLabelValues(labels["method"], labels["path"]).Observe(duration.Seconds())
		return
	}
	pm.stageLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by
// incrementing Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "underwrite_decisions_total":
		pm.decisionsTotal.WithLabelValues(labels["decision"]).Add(value)
	case "underwrite_pipeline_stage_total":
		pm.stageTotal.WithLabelValues(labels["stage"], labels["status"]).Add(value)
	case "underwrite_http_requests_total":
		pm.httpTotal.WithLabelValues(labels["method"], labels["path"], labels["status"]).Add(value)
	default:
		status, ok := labels["status"]
		if !ok {
			status = "success"
		}
		pm.operationTotal.WithLabelValues(metric, status).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by
// recording values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	if metric == "batch_records" {
		pm.batchRecords.Observe(value)
		return
	}
	pm.stageLatency.WithLabelValues(metric).Observe(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
