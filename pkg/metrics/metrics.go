// Package metrics provides Prometheus metrics for the ipfsdavd server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Peer node RPC metrics
	backendCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipfsdav_backend_calls_total",
			Help: "Total number of calls made to the peer node, by operation and result",
		},
		[]string{"op", "result"},
	)

	backendCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ipfsdav_backend_call_duration_seconds",
			Help:    "Peer node call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// Metadata cache metrics
	cacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ipfsdav_cache_entries",
			Help: "Number of paths held in the metadata cache",
		},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipfsdav_cache_lookups_total",
			Help: "Metadata lookups answered from the cache (hit) or the peer node (miss)",
		},
		[]string{"result"},
	)

	// WebDAV request metrics
	davRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipfsdav_requests_total",
			Help: "Total number of WebDAV requests",
		},
		[]string{"method", "status"},
	)

	davRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ipfsdav_request_duration_seconds",
			Help:    "WebDAV request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// ObserveBackendCall records one peer node call that started at start.
func ObserveBackendCall(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	backendCallsTotal.WithLabelValues(op, result).Inc()
	backendCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func SetCacheEntries(n int) {
	cacheEntries.Set(float64(n))
}

func CacheHit() {
	cacheLookupsTotal.WithLabelValues("hit").Inc()
}

func CacheMiss() {
	cacheLookupsTotal.WithLabelValues("miss").Inc()
}

// ObserveRequest records a completed WebDAV request.
func ObserveRequest(method string, status int, start time.Time) {
	davRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	davRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
