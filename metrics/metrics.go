// Package metrics provides Prometheus metrics for the import and
// classification pipeline.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics contains the metrics recorded while importing and
// classifying reviews. A nil *PipelineMetrics is valid and records nothing.
type PipelineMetrics struct {
	RowsTotal          *prometheus.CounterVec
	PlatformDetections *prometheus.CounterVec
	Classifications    *prometheus.CounterVec
	Fallbacks          *prometheus.CounterVec
	BackendDuration    *prometheus.HistogramVec
	RecordFailures     prometheus.Counter
	CacheHits          prometheus.Counter
	registry           *prometheus.Registry
}

// NewPipelineMetrics creates the metrics and registers them with registry.
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register pipeline metrics: %w", err)
	}
	return m, nil
}

func (m *PipelineMetrics) initMetrics() {
	m.RowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "review_import_rows_total",
		Help: "Rows seen by the importer, by stage (read, kept, dropped).",
	}, []string{"stage"})

	m.PlatformDetections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "review_import_platform_detections_total",
		Help: "Uploaded files by detected platform.",
	}, []string{"platform"})

	m.Classifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "review_classifications_total",
		Help: "Completed classifications by method.",
	}, []string{"method"})

	m.Fallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "review_classification_fallbacks_total",
		Help: "Remote classification failures that fell back to local analysis.",
	}, []string{"provider"})

	m.BackendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "review_backend_request_duration_seconds",
		Help:    "Duration of remote classification requests in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"provider", "status"})

	m.RecordFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "review_import_record_failures_total",
		Help: "Records whose classification failed during a batch.",
	})

	m.CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "review_analysis_cache_hits_total",
		Help: "Classifications served from the analysis cache.",
	})
}

// ObserveRows records the row counts of one validation run.
func (m *PipelineMetrics) ObserveRows(read, kept int) {
	if m == nil {
		return
	}
	m.RowsTotal.WithLabelValues("read").Add(float64(read))
	m.RowsTotal.WithLabelValues("kept").Add(float64(kept))
	m.RowsTotal.WithLabelValues("dropped").Add(float64(read - kept))
}

// IncrementPlatform counts one detection of platform.
func (m *PipelineMetrics) IncrementPlatform(platform string) {
	if m == nil {
		return
	}
	m.PlatformDetections.WithLabelValues(platform).Inc()
}

// IncrementClassification counts one classification by method.
func (m *PipelineMetrics) IncrementClassification(method string) {
	if m == nil {
		return
	}
	m.Classifications.WithLabelValues(method).Inc()
}

// IncrementFallback counts one remote failure for provider.
func (m *PipelineMetrics) IncrementFallback(provider string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(provider).Inc()
}

// ObserveBackendDuration records the duration of one remote request.
func (m *PipelineMetrics) ObserveBackendDuration(provider, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.BackendDuration.WithLabelValues(provider, status).Observe(d.Seconds())
}

// IncrementRecordFailures counts one failed record.
func (m *PipelineMetrics) IncrementRecordFailures() {
	if m == nil {
		return
	}
	m.RecordFailures.Inc()
}

// IncrementCacheHits counts one cache hit.
func (m *PipelineMetrics) IncrementCacheHits() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Collect implements the prometheus.Collector interface.
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	m.RowsTotal.Collect(ch)
	m.PlatformDetections.Collect(ch)
	m.Classifications.Collect(ch)
	m.Fallbacks.Collect(ch)
	m.BackendDuration.Collect(ch)
	ch <- m.RecordFailures
	ch <- m.CacheHits
}

// Describe implements the prometheus.Collector interface.
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.RowsTotal.Describe(ch)
	m.PlatformDetections.Describe(ch)
	m.Classifications.Describe(ch)
	m.Fallbacks.Describe(ch)
	m.BackendDuration.Describe(ch)
	ch <- m.RecordFailures.Desc()
	ch <- m.CacheHits.Desc()
}
