package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	starRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "star_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	starRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "star_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	starSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "star_submissions_total",
		Help: "Total star submissions by outcome.",
	}, []string{"outcome"})

	starChainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "star_chain_height",
		Help: "Current number of entries in the chain, including genesis.",
	})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		starRequestsTotal.WithLabelValues(method, path, status).Inc()
		starRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordSubmission records a star submission outcome ("sealed" or the stable
// failure message).
func RecordSubmission(outcome string) {
	starSubmissionsTotal.WithLabelValues(outcome).Inc()
}

// SetChainHeight updates the chain height gauge.
func SetChainHeight(height float64) {
	starChainHeight.Set(height)
}
