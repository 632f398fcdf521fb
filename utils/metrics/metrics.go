package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks entity store operations and HTTP traffic.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	StoreOperations       *prometheus.CounterVec
	StoreOperationSeconds *prometheus.HistogramVec
	SearchCacheLookups    *prometheus.CounterVec
	HTTPRequests          *prometheus.CounterVec
	HTTPRequestSeconds    *prometheus.HistogramVec
}

// New registers all metrics with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_store_operations_total",
			Help: "Entity store operations by entity, operation and outcome",
		}, []string{"entity", "operation", "outcome"}),
		StoreOperationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campus_store_operation_duration_seconds",
			Help:    "Duration of entity store operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"entity", "operation"}),
		SearchCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_search_cache_lookups_total",
			Help: "Search cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campus_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveStore records one store operation. outcome is "ok" or an error kind.
func (m *Metrics) ObserveStore(entity, operation, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.StoreOperations.WithLabelValues(entity, operation, outcome).Inc()
	m.StoreOperationSeconds.WithLabelValues(entity, operation).Observe(time.Since(start).Seconds())
}

// ObserveSearchCache records a cache hit, miss or error
func (m *Metrics) ObserveSearchCache(result string) {
	if m == nil {
		return
	}
	m.SearchCacheLookups.WithLabelValues(result).Inc()
}

// ObserveHTTP records a finished request
func (m *Metrics) ObserveHTTP(method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}
