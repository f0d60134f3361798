package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics exposes request-level instruments, labeled by route template to
// keep cardinality bounded.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// Metrics exposes application-level instruments.
type Metrics struct {
	usageRecords     *prometheus.CounterVec
	rateLimitDenied  *prometheus.CounterVec
	exportsGenerated *prometheus.CounterVec
}

func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boxtrack_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "boxtrack_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		usageRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boxtrack_usage_records_total",
			Help: "Usage record attempts by outcome.",
		}, []string{"outcome"}),
		rateLimitDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boxtrack_rate_limit_denied_total",
			Help: "Requests denied by the usage rate limiter.",
		}, []string{"endpoint"}),
		exportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boxtrack_exports_generated_total",
			Help: "Inventory exports by format.",
		}, []string{"format"}),
	}

	for _, c := range []prometheus.Collector{m.usageRecords, m.rateLimitDenied, m.exportsGenerated} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) RecordUsageOutcome(outcome string) {
	if m == nil {
		return
	}
	m.usageRecords.WithLabelValues(strings.TrimSpace(outcome)).Inc()
}

func (m *Metrics) RecordRateLimitDenied(endpoint string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.WithLabelValues(strings.TrimSpace(endpoint)).Inc()
}

func (m *Metrics) RecordExport(format string) {
	if m == nil {
		return
	}
	m.exportsGenerated.WithLabelValues(strings.TrimSpace(format)).Inc()
}

// GinMiddleware observes every request against the route template.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.requestsTotal.WithLabelValues(method, route, status).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
