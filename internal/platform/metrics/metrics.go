// Package metrics wires Prometheus instrumentation: a request counter and
// latency histogram per route, exposed on /metrics in the standard text
// exposition format.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry and the per-request collectors.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New creates a registry with process/runtime collectors plus the HTTP
// request collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "caretrack_http_requests_total",
		Help: "HTTP requests processed, by method, route and status.",
	}, []string{"method", "path", "status"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "caretrack_http_request_duration_seconds",
		Help:    "HTTP request latency, by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	reg.MustRegister(requests, latency)

	return &Metrics{registry: reg, requests: requests, latency: latency}
}

// Middleware records request counts and latencies. Routes are labeled by
// their registered pattern (e.g. /api/appointments/:id), not the raw path,
// to keep cardinality bounded.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			m.latency.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler returns the /metrics scrape handler.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
