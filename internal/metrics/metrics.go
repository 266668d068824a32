package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "collab_docs"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Handled HTTP requests by route and status."},
		[]string{"method", "route", "status"},
	)
	AuthenticationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "authentication_failures_total", Help: "Rejected access gate checks by reason."},
		[]string{"reason"},
	)
	AuthorizationDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "authorization_denied_total", Help: "Ownership checks that ended in Forbidden."},
		[]string{"resource", "operation"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(AuthenticationFailures)
	reg.MustRegister(AuthorizationDenied)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}

// Middleware counts requests by matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
