// Package metrics is the reference for the Prometheus metrics exported by
// linkpager. Metrics are defined with promauto in the packages that record
// them (transport, pagination, ratelimit); this package names them and serves
// the registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all linkpager metrics are created in.
var Registry = prometheus.DefaultRegisterer

// Metric names.
const (
	// transport
	RequestsTotal          = "linkpager_requests_total"           // counter{status}
	RequestDurationSeconds = "linkpager_request_duration_seconds" // histogram
	TransportErrorsTotal   = "linkpager_transport_errors_total"   // counter{class}

	// pagination
	TraversalsTotal = "linkpager_traversals_total" // counter{outcome}
	PagesTotal      = "linkpager_pages_total"      // counter{front,result}
	TraversalPages  = "linkpager_traversal_pages"  // histogram

	// ratelimit
	RateLimitRemaining      = "linkpager_rate_limit_remaining"       // gauge{host}
	RateLimitBlocksTotal    = "linkpager_rate_limit_blocks_total"    // counter
	RateLimitThrottlesTotal = "linkpager_rate_limit_throttles_total" // counter
)

// Catalogue lists every metric name above.
var Catalogue = []string{
	RequestsTotal,
	RequestDurationSeconds,
	TransportErrorsTotal,
	TraversalsTotal,
	PagesTotal,
	TraversalPages,
	RateLimitRemaining,
	RateLimitBlocksTotal,
	RateLimitThrottlesTotal,
}

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Example Prometheus Queries:
//
//   # Pages fetched per traversal (p95)
//   histogram_quantile(0.95, rate(linkpager_traversal_pages_bucket[5m]))
//
//   # Failed traversals
//   rate(linkpager_traversals_total{outcome="failed"}[5m])
//
//   # Captured page failures under the lenient policy
//   rate(linkpager_pages_total{result="error"}[5m])
//
//   # Hosts close to their rate limit
//   linkpager_rate_limit_remaining < 20
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(linkpager_request_duration_seconds_bucket[5m]))
