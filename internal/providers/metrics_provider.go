package providers

import (
	"snapshotd/internal/structures"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveStoreDuration(operation string, duration time.Duration)
	IncStoreErrors(operation string)
	AddPurgedObjects(outcome string, count int)
	ObserveSnapshotPoints(series string, points int)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	storeDuration   *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	purgedObjects   *prometheus.CounterVec
	snapshotPoints  *prometheus.HistogramVec
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

func (m *MetricsProvider) ObserveStoreDuration(operation string, duration time.Duration) {
	m.storeDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncStoreErrors(operation string) {
	m.storeErrors.WithLabelValues(operation).Inc()
}

func (m *MetricsProvider) AddPurgedObjects(outcome string, count int) {
	m.purgedObjects.WithLabelValues(outcome).Add(float64(count))
}

func (m *MetricsProvider) ObserveSnapshotPoints(series string, points int) {
	m.snapshotPoints.WithLabelValues(series).Observe(float64(points))
}

func httpStatusBucket(code int) string {
	if code < 100 || code > 599 {
		return strconv.Itoa(code)
	}
	return strconv.Itoa(code/100) + "xx"
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "snapshotd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "snapshotd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "snapshotd_cache_hits_total",
			Help: "Total number of snapshot cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "snapshotd_cache_misses_total",
			Help: "Total number of snapshot cache misses",
		}),

		storeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "snapshotd_store_duration_seconds",
			Help:    "Object store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		storeErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "snapshotd_store_errors_total",
			Help: "Total number of failed object store operations",
		}, []string{"operation"}),

		purgedObjects: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "snapshotd_purged_objects_total",
			Help: "Objects processed by purge operations, by outcome",
		}, []string{"outcome"}),

		snapshotPoints: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "snapshotd_snapshot_points",
			Help:    "Points per series in accepted snapshots",
			Buckets: []float64{0, 10, 100, 500, 1000, 2400},
		}, []string{"series"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObserveStoreDuration(_ string, _ time.Duration)   {}
func (n *noopMetrics) IncStoreErrors(_ string)                          {}
func (n *noopMetrics) AddPurgedObjects(_ string, _ int)                 {}
func (n *noopMetrics) ObserveSnapshotPoints(_ string, _ int)            {}
