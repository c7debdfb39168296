package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// Singleton pattern for metrics (avoid double registration in tests).
var (
	httpMetricsInstance *httpMetrics
	httpMetricsOnce     sync.Once
	httpMetricsRegistry = prometheus.DefaultRegisterer
)

func newHTTPMetrics() *httpMetrics {
	httpMetricsOnce.Do(func() {
		factory := promauto.With(httpMetricsRegistry)
		httpMetricsInstance = &httpMetrics{
			requests: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests by route and status",
			}, []string{"method", "route", "status"}),
			duration: factory.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "route"}),
			inFlight: factory.NewGauge(prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Requests currently being served",
			}),
		}
	})
	return httpMetricsInstance
}

// resetHTTPMetricsForTesting swaps in a fresh registry. Tests only.
func resetHTTPMetricsForTesting() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	httpMetricsRegistry = reg
	httpMetricsInstance = nil
	httpMetricsOnce = sync.Once{}
	return reg
}

// MetricsMiddleware records request counts and latencies. Routes are
// labelled by their pattern so ids do not explode cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	m := newHTTPMetrics()
	return func(c *gin.Context) {
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
