package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linkdeck/internal/handler/http/pathutil"
	"linkdeck/internal/handler/http/responsewriter"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	// The bucket tail runs out to 20s because a cold preview resolution
	// carries the full upstream fetch timeout before it degrades.
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
	}, []string{"method", "path", "status"})

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being served",
	})

	httpRequestSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_size_bytes",
		Help:    "HTTP request size in bytes",
		Buckets: prometheus.ExponentialBuckets(100, 10, 8),
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "HTTP response size in bytes",
		Buckets: prometheus.ExponentialBuckets(100, 10, 8),
	}, []string{"method", "path"})
)

// MetricsMiddleware records request count, latency, and body sizes.
// Paths are normalized before labeling ("/links/123" becomes
// "/links/:id") so per-link URLs cannot explode label cardinality.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		path := pathutil.NormalizePath(r.URL.Path)
		if r.ContentLength > 0 {
			httpRequestSize.WithLabelValues(r.Method, path).Observe(float64(r.ContentLength))
		}

		rw := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(rw, r)
		elapsed := time.Since(start).Seconds()

		status := strconv.Itoa(rw.StatusCode())
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(elapsed)
		httpResponseSize.WithLabelValues(r.Method, path).Observe(float64(rw.BytesWritten()))
	})
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
