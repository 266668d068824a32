package middleware

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/collab-docs-api/internal/errors"
	"github.com/yukikurage/collab-docs-api/internal/metrics"
	"golang.org/x/time/rate"
)

// DefaultLimiterIdleTTL is how long an unused client bucket is kept.
const DefaultLimiterIdleTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per client IP.
// Buckets idle for longer than idleTTL are dropped on the next sweep.
type RateLimiter struct {
	name      string
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep atomic.Int64
	limiters  sync.Map // map[string]*clientBucket
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// NewRateLimiter creates a limiter; name labels its metrics.
func NewRateLimiter(name string, rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	l := &RateLimiter{
		name:    name,
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: DefaultLimiterIdleTTL,
		now:     time.Now,
	}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

func (l *RateLimiter) bucket(key string, now time.Time) *clientBucket {
	v, ok := l.limiters.Load(key)
	if !ok {
		v, _ = l.limiters.LoadOrStore(key, &clientBucket{limiter: rate.NewLimiter(l.rps, l.burst)})
	}
	b := v.(*clientBucket)
	b.lastSeen.Store(now.UnixNano())
	return b
}

// sweep drops idle buckets at most once per idleTTL.
func (l *RateLimiter) sweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(l.idleTTL) || !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-l.idleTTL).UnixNano()
	l.limiters.Range(func(key, value any) bool {
		if value.(*clientBucket).lastSeen.Load() < cutoff {
			l.limiters.Delete(key)
		}
		return true
	})
}

// Middleware rejects requests over the bucket with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if key == "" {
			key = "unknown"
		}

		now := l.now()
		l.sweep(now)

		if !l.bucket(key, now).limiter.Allow() {
			metrics.RateLimitRejected.WithLabelValues(l.name).Inc()
			c.Header("Retry-After", "1")
			apierrors.TooManyRequests(c, "")
			return
		}

		metrics.RateLimitAllowed.WithLabelValues(l.name).Inc()
		c.Next()
	}
}
