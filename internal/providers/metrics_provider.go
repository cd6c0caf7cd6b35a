package providers

import (
	"time"

	"birdsong/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncFetchesTotal(endpoint string, outcome string)
	ObserveFetchDuration(endpoint string, duration time.Duration)
	IncCoalescedFetches()
	IncPreferenceWrites()
	IncExternalSyncs()
}

type MetricsProvider struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	fetchesTotal     *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
	coalescedFetches prometheus.Counter
	preferenceWrites prometheus.Counter
	externalSyncs    prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncFetchesTotal(endpoint string, outcome string) {
	m.fetchesTotal.WithLabelValues(endpoint, outcome).Inc()
}

func (m *MetricsProvider) ObserveFetchDuration(endpoint string, duration time.Duration) {
	m.fetchDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCoalescedFetches() {
	m.coalescedFetches.Inc()
}

func (m *MetricsProvider) IncPreferenceWrites() {
	m.preferenceWrites.Inc()
}

func (m *MetricsProvider) IncExternalSyncs() {
	m.externalSyncs.Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "birdsong_requests_total",
			Help: "Total number of gateway HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "birdsong_request_duration_seconds",
			Help:    "Gateway HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "birdsong_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "birdsong_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		fetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "birdsong_backend_fetches_total",
			Help: "Total number of backend fetches by outcome",
		}, []string{"endpoint", "outcome"}),

		fetchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "birdsong_backend_fetch_duration_seconds",
			Help:    "Backend fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		coalescedFetches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "birdsong_coalesced_fetches_total",
			Help: "Page requests served by an already in-flight fetch",
		}),

		preferenceWrites: promauto.NewCounter(prometheus.CounterOpts{
			Name: "birdsong_preference_writes_total",
			Help: "Total number of preference records written to durable storage",
		}),

		externalSyncs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "birdsong_preference_external_syncs_total",
			Help: "Preference changes applied from another process",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncFetchesTotal(_ string, _ string)               {}
func (n *noopMetrics) ObserveFetchDuration(_ string, _ time.Duration)   {}
func (n *noopMetrics) IncCoalescedFetches()                             {}
func (n *noopMetrics) IncPreferenceWrites()                             {}
func (n *noopMetrics) IncExternalSyncs()                                {}

// NewNoopMetrics is used where metrics are not wired, e.g. one-shot CLI commands.
func NewNoopMetrics() MetricsProviderInterface {
	return &noopMetrics{}
}
