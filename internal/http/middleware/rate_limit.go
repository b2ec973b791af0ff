package middleware

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yungbote/philoatlas-backend/internal/http/response"
	"github.com/yungbote/philoatlas-backend/internal/observability"
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

var errTooManyRequests = errors.New("too many requests")

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	nextSweep time.Time
	limit     rate.Limit
	burst     int
	now       func() time.Time
	metrics   *observability.Metrics
}

func NewIPRateLimiter(rps float64, burst int, m *observability.Metrics) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		visitors: map[string]*visitor{},
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		metrics:  m,
	}
}

func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	if !now.Before(l.nextSweep) {
		l.evictLocked(now)
		l.nextSweep = now.Add(limiterSweepInterval)
	}
	return v.limiter.AllowN(now, 1)
}

// evictLocked drops visitors idle for longer than limiterIdleTTL. Allow runs it
// at most once per limiterSweepInterval.
func (l *IPRateLimiter) evictLocked(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(l.visitors, ip)
		}
	}
}

// RateLimit rejects requests over the limiter's budget with 429. A nil limiter or a non-positive
// rate disables limiting.
func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	if l == nil || l.limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			l.metrics.IncRateLimited(c.FullPath())
			c.Header("Retry-After", "1")
			response.RespondError(c, http.StatusTooManyRequests, "rate_limited", errTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
