package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// Store metrics
	storeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_store_operations_total",
			Help: "Total number of inquiry store operations",
		},
		[]string{"operation", "status"},
	)

	storeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inquiry_store_operation_duration_seconds",
			Help:    "Inquiry store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	// Business metrics
	inquiriesSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inquiries_submitted_total",
			Help: "Total number of accepted inquiry submissions",
		},
	)

	inquiriesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiries_rejected_total",
			Help: "Total number of rejected inquiry submissions",
		},
		[]string{"reason"},
	)

	inquiryStatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_status_changes_total",
			Help: "Total number of inquiry status changes",
		},
		[]string{"status"},
	)

	rateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_auth_attempts_total",
			Help: "Total number of admin authentication attempts",
		},
		[]string{"status"}, // success, failure
	)
)

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint, status).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func RecordStoreOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	storeOperationsTotal.WithLabelValues(operation, status).Inc()
	storeOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordInquirySubmitted() {
	inquiriesSubmittedTotal.Inc()
}

func RecordInquiryRejected(reason string) {
	inquiriesRejectedTotal.WithLabelValues(reason).Inc()
}

func RecordStatusChange(status string) {
	inquiryStatusChangesTotal.WithLabelValues(status).Inc()
}

func RecordRateLimited() {
	rateLimitedTotal.Inc()
}

func RecordAuthAttempt(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	authAttemptsTotal.WithLabelValues(status).Inc()
}
