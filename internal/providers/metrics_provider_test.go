package providers

import (
	"testing"
	"time"

	"birdsong/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTestRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	})
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// Ensure no-op methods don't panic
	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncFetchesTotal("timeline", "ok")
	m.ObserveFetchDuration("timeline", time.Millisecond)
	m.IncCoalescedFetches()
	m.IncPreferenceWrites()
	m.IncExternalSyncs()
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	mp, ok := m.(*MetricsProvider)
	require.True(t, ok)

	m.IncRequestsTotal("/timeline", 200)
	m.IncRequestsTotal("/timeline", 502)
	m.ObserveRequestDuration("/timeline", 5*time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncFetchesTotal("timeline", "ok")
	m.IncFetchesTotal("timeline", "ok")
	m.IncFetchesTotal("timeline", "error")
	m.ObserveFetchDuration("timeline", 20*time.Millisecond)
	m.IncCoalescedFetches()
	m.IncPreferenceWrites()
	m.IncExternalSyncs()

	assert.Equal(t, 2.0, testutil.ToFloat64(mp.fetchesTotal.WithLabelValues("timeline", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mp.fetchesTotal.WithLabelValues("timeline", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mp.coalescedFetches))
	assert.Equal(t, 1.0, testutil.ToFloat64(mp.requestsTotal.WithLabelValues("/timeline", "5xx")))
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
