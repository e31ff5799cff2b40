// Package metrics exposes the Prometheus metrics of the NEIS client.
// All metrics are defined in their respective packages (client, pagination,
// cache, ratelimit, and the gateway) to maintain modularity and avoid circular dependencies.
//
// This package provides the scrape handler and a catalogue of every metric.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every package registers into via promauto.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer the scrape handler reads from.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the /metrics scrape handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Catalogue lists the name of every metric the client registers.
var Catalogue = []string{
	// pkg/client
	"neis_requests_total",
	"neis_request_duration_seconds",
	"neis_errors_total",
	"neis_retries_total",
	"neis_retry_backoff_seconds",
	"neis_retry_exhausted_total",

	// pkg/pagination
	"neis_fetch_pages_total",
	"neis_fetch_duration_seconds",
	"neis_fetch_results_total",
	"neis_fetch_incomplete_total",

	// pkg/cache
	"neis_cache_hits_total",
	"neis_cache_misses_total",
	"neis_cache_size_bytes",
	"neis_cache_errors_total",

	// pkg/ratelimit
	"neis_quota_exhausted",
	"neis_quota_trips_total",
	"neis_quota_blocks_total",

	// internal/server
	"neis_http_requests_total",
	"neis_http_request_duration_seconds",
}

// Registered returns the catalogued metrics that currently have at least one
// series in Gatherer. Vectors only appear once a label set was observed.
func Registered() ([]string, error) {
	families, err := Gatherer.Gather()
	if err != nil {
		return nil, err
	}

	var out []string
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "neis_") {
			out = append(out, mf.GetName())
		}
	}
	return out, nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - neis_requests_total{service, status} (Counter): HTTP requests by service and status
//   - neis_request_duration_seconds{service} (Histogram): HTTP request duration
//   - neis_errors_total{class} (Counter): Errors by class (transport, service, quota, envelope)
//
// Retry Metrics (pkg/client):
//   - neis_retries_total (Counter): Transport retry attempts
//   - neis_retry_backoff_seconds (Histogram): Backoff before a retry
//   - neis_retry_exhausted_total (Counter): Requests that used up their attempts
//
// Fetch Metrics (pkg/pagination):
//   - neis_fetch_pages_total{service} (Counter): Pages requested
//   - neis_fetch_duration_seconds{service, mode} (Histogram): Whole-fetch duration
//   - neis_fetch_results_total{service, outcome} (Counter): ok, not_found, error
//   - neis_fetch_incomplete_total{service} (Counter): Fewer rows than declared
//
// Cache Metrics (pkg/cache):
//   - neis_cache_hits_total{layer} (Counter): Hits by layer (redis, memory)
//   - neis_cache_misses_total (Counter): Misses
//   - neis_cache_size_bytes{layer} (Gauge): Cached body bytes
//   - neis_cache_errors_total{operation} (Counter): get, set, delete failures
//
// Quota Metrics (pkg/ratelimit):
//   - neis_quota_exhausted (Gauge): 1 while ERROR-337 blocks requests
//   - neis_quota_trips_total (Counter): Times the quota guard tripped
//   - neis_quota_blocks_total (Counter): Requests refused locally
//
// Gateway Metrics (internal/server):
//   - neis_http_requests_total{route, status} (Counter): Requests served by neis serve
//   - neis_http_request_duration_seconds{route} (Histogram): Gateway latency
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(neis_cache_hits_total[5m])) /
//   (sum(rate(neis_cache_hits_total[5m])) + sum(rate(neis_cache_misses_total[5m])))
//
//   # Quota Status
//   neis_quota_exhausted == 1
//
//   # Fetch Error Rate
//   sum(rate(neis_fetch_results_total{outcome="error"}[5m])) / sum(rate(neis_fetch_results_total[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(neis_request_duration_seconds_bucket[5m]))
