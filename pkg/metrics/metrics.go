package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "price_cache_hits_total",
			Help: "Total number of price response cache hits",
		},
	)
	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "price_cache_misses_total",
			Help: "Total number of price response cache misses",
		},
	)
	RedisOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	RedisErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_errors_total",
			Help: "Total number of failed Redis operations",
		},
		[]string{"operation"},
	)
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of calls to postcodes.io and the Land Registry endpoint",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream", "operation"},
	)
	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_errors_total",
			Help: "Total number of failed upstream calls",
		},
		[]string{"upstream", "operation"},
	)
)

var registerOnce sync.Once

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(CacheHitsTotal)
		prometheus.MustRegister(CacheMissesTotal)
		prometheus.MustRegister(RedisOperationDuration)
		prometheus.MustRegister(RedisErrorsTotal)
		prometheus.MustRegister(UpstreamRequestDuration)
		prometheus.MustRegister(UpstreamErrorsTotal)
	})
}
