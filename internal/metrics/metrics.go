// Package metrics registers the Prometheus collectors exposed on /metrics.
//
// Labels only carry closed sets (domain, role, outcome, route template) so
// cardinality stays bounded.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcomes
const (
	OutcomeOK          = "ok"
	OutcomeNoAccess    = "no_access"
	OutcomeUnknownRole = "unknown_role"
	OutcomeFailed      = "failed"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bufete_queries_total",
			Help: "Role-scoped listing queries, by domain, role and outcome.",
		},
		[]string{"domain", "role", "outcome"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bufete_query_duration_seconds",
			Help:    "Time spent scoping, filtering, aggregating and paginating a listing.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"domain"},
	)

	StoredRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bufete_stored_records",
			Help: "Records held in each in-memory log.",
		},
		[]string{"domain"},
	)

	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bufete_jobs_total",
			Help: "Background job runs, by job name and outcome.",
		},
		[]string{"job", "outcome"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bufete_http_requests_total",
			Help: "HTTP requests, by method, route template and status code.",
		},
		[]string{"method", "path", "status"},
	)
)

// ObserveQuery records one listing query
func ObserveQuery(domain, role, outcome string, elapsed time.Duration) {
	QueriesTotal.WithLabelValues(domain, role, outcome).Inc()
	QueryDuration.WithLabelValues(domain).Observe(elapsed.Seconds())
}

// SetStored updates the record gauge for domain
func SetStored(domain string, n int) {
	StoredRecords.WithLabelValues(domain).Set(float64(n))
}

// ObserveJob records one background job run
func ObserveJob(name, outcome string) {
	JobsTotal.WithLabelValues(name, outcome).Inc()
}

// Middleware counts requests by route template rather than raw URL
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
