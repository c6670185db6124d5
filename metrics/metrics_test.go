package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineMetricsCounters(t *testing.T) {
	m, err := NewPipelineMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveRows(10, 7)
	m.IncrementPlatform("google")
	m.IncrementClassification("local")
	m.IncrementClassification("local")
	m.IncrementFallback("claude")
	m.IncrementRecordFailures()
	m.IncrementCacheHits()

	assert.Equal(t, 10.0, testutil.ToFloat64(m.RowsTotal.WithLabelValues("read")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.RowsTotal.WithLabelValues("kept")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RowsTotal.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlatformDetections.WithLabelValues("google")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Classifications.WithLabelValues("local")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues("claude")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
}

func TestPipelineMetricsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPipelineMetrics(reg)
	require.NoError(t, err)

	_, err = NewPipelineMetrics(reg)
	assert.Error(t, err)
}

func TestNilPipelineMetricsIsNoop(t *testing.T) {
	var m *PipelineMetrics
	assert.NotPanics(t, func() {
		m.ObserveRows(1, 1)
		m.IncrementPlatform("yelp")
		m.IncrementClassification("local")
		m.IncrementFallback("openai")
		m.ObserveBackendDuration("openai", "error", time.Second)
		m.IncrementRecordFailures()
		m.IncrementCacheHits()
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m, err := NewPipelineMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	m.ObserveBackendDuration("claude", "ok", 120*time.Millisecond)
	m.IncrementCacheHits()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "review_backend_request_duration_seconds")
	assert.Contains(t, rec.Body.String(), "review_analysis_cache_hits_total 1")
}
