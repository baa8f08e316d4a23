package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	rowsProcessed       *prometheus.CounterVec
	importsTotal        *prometheus.CounterVec
	importDuration      prometheus.Histogram
	chunksTotal         *prometheus.CounterVec
	chunkDuration       prometheus.Histogram
	classifierDegraded  *prometheus.CounterVec
	fetchOutcomes       *prometheus.CounterVec
	circuitBreakerState *prometheus.GaugeVec
	uploadInFlight      prometheus.Gauge
	uploadProgress      prometheus.Gauge
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		rowsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_rows_total",
				Help: "Total statement rows processed by outcome",
			},
			[]string{"outcome"},
		),
		importsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_imports_total",
				Help: "Total import invocations by status",
			},
			[]string{"status"},
		),
		importDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingest_import_duration_milliseconds",
				Help:    "End-to-end import duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 16),
			},
		),
		chunksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_upload_chunks_total",
				Help: "Total upload chunk submissions by status",
			},
			[]string{"status"},
		),
		chunkDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingest_upload_chunk_duration_milliseconds",
				Help:    "Upload chunk duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		classifierDegraded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_classifier_degraded_total",
				Help: "Total classifier calls that fell back to the heuristic",
			},
			[]string{"reason"},
		),
		fetchOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_fetch_outcomes_total",
				Help: "History fetch outcomes (complete, truncated, cache hit)",
			},
			[]string{"outcome"},
		),
		circuitBreakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
		uploadInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ingest_upload_chunks_in_flight",
				Help: "Upload chunk submissions currently in flight",
			},
		),
		uploadProgress: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ingest_upload_progress_percent",
				Help: "Progress of the most recent upload as a percentage",
			},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case "import.row.mapped":
		m.rowsProcessed.WithLabelValues("mapped").Inc()
	case "import.row.dropped":
		m.rowsProcessed.WithLabelValues("dropped").Inc()
	case "import.row.duplicate":
		m.rowsProcessed.WithLabelValues("duplicate").Inc()
	case "import.row.inserted":
		m.rowsProcessed.WithLabelValues("inserted").Inc()
	case "import.completed":
		m.importsTotal.WithLabelValues("completed").Inc()
	case "import.failed":
		m.importsTotal.WithLabelValues("failed").Inc()
	case "import.chunk.uploaded":
		m.chunksTotal.WithLabelValues("success").Inc()
	case "import.chunk.failed":
		m.chunksTotal.WithLabelValues("failed").Inc()
	case "import.classifier.degraded":
		reason := tags["reason"]
		if reason == "" {
			reason = "unknown"
		}
		m.classifierDegraded.WithLabelValues(reason).Inc()
	case "import.fetch.truncated":
		m.fetchOutcomes.WithLabelValues("truncated").Inc()
	case "import.fetch.cache_hit":
		m.fetchOutcomes.WithLabelValues("cache_hit").Inc()
	case "import.fetch.complete":
		m.fetchOutcomes.WithLabelValues("complete").Inc()
	case "circuit_breaker.open":
		m.circuitBreakerState.WithLabelValues(tags["service"]).Set(1)
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "import.duration":
		m.importDuration.Observe(float64(duration.Milliseconds()))
	case "import.chunk.upload":
		m.chunkDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "import.upload.in_flight":
		m.uploadInFlight.Set(value)
	case "import.upload.progress":
		m.uploadProgress.Set(value)
	case "circuit_breaker.state":
		if service := tags["service"]; service != "" {
			m.circuitBreakerState.WithLabelValues(service).Set(value)
		}
	}
}
