package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so that parallel tests never collide
// on duplicate collector registration.
type Metrics struct {
	registry *prometheus.Registry

	fetchAttempts    *prometheus.CounterVec
	fetchRetries     *prometheus.CounterVec
	fetchCompleted   *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
	cacheRequests    *prometheus.CounterVec
	cacheStoreFail   prometheus.Counter
	spriteDimensions prometheus.Counter
	spriteMisses     prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetchAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maploader_fetch_attempts_total",
		Help: "Total transport attempts",
	}, []string{"kind"})

	fetchRetries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maploader_fetch_retries_total",
		Help: "Total scheduled retries",
	}, []string{"strategy"})

	fetchCompleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maploader_fetch_completed_total",
		Help: "Total terminal fetch deliveries",
	}, []string{"status", "hint"})

	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "maploader_fetch_duration_seconds",
		Help:    "Wall time from request creation to terminal delivery",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	cacheRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maploader_cache_requests_total",
		Help: "Response cache lookups by result",
	}, []string{"result"})

	cacheStoreFail := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "maploader_cache_store_failures_total",
		Help: "Total response cache write failures",
	})

	spriteDimensions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "maploader_sprite_dimension_rejections_total",
		Help: "Total sprite replacements rejected for changed dimensions",
	})

	spriteMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "maploader_sprite_misses_total",
		Help: "Total sprite lookups for unknown names",
	})

	registry.MustRegister(
		fetchAttempts,
		fetchRetries,
		fetchCompleted,
		fetchDuration,
		cacheRequests,
		cacheStoreFail,
		spriteDimensions,
		spriteMisses,
	)

	return &Metrics{
		registry:         registry,
		fetchAttempts:    fetchAttempts,
		fetchRetries:     fetchRetries,
		fetchCompleted:   fetchCompleted,
		fetchDuration:    fetchDuration,
		cacheRequests:    cacheRequests,
		cacheStoreFail:   cacheStoreFail,
		spriteDimensions: spriteDimensions,
		spriteMisses:     spriteMisses,
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordFetchAttempt(kind string) {
	if m == nil {
		return
	}
	m.fetchAttempts.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordFetchRetry(strategy string) {
	if m == nil {
		return
	}
	m.fetchRetries.WithLabelValues(strategy).Inc()
}

func (m *Metrics) RecordFetchCompleted(status string, hint string, kind string, seconds float64) {
	if m == nil {
		return
	}
	m.fetchCompleted.WithLabelValues(status, hint).Inc()
	m.fetchDuration.WithLabelValues(kind).Observe(seconds)
}

func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordCacheStoreFailure() {
	if m == nil {
		return
	}
	m.cacheStoreFail.Inc()
}

func (m *Metrics) RecordSpriteDimensionRejection() {
	if m == nil {
		return
	}
	m.spriteDimensions.Inc()
}

func (m *Metrics) RecordSpriteMiss() {
	if m == nil {
		return
	}
	m.spriteMisses.Inc()
}
