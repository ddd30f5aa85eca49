package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	mem "topup/pkg/memcache"
	"topup/pkg/utils"
)

// A bucket idle this long has refilled completely, so dropping it loses nothing.
const idleBucketTTL = 5 * time.Minute

type RateLimiter struct {
	buckets *mem.TTLCache[*rate.Limiter]
	limit   rate.Limit
	burst   int
	idle    time.Duration

	mu        sync.Mutex
	lastSweep time.Time
}

// NewRateLimiter allows perMinute requests per client with a burst of the same size.
// A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	r := &RateLimiter{
		buckets:   mem.NewTTLCache[*rate.Limiter](),
		idle:      idleBucketTTL,
		lastSweep: time.Now(),
	}
	if perMinute > 0 {
		r.limit = rate.Every(time.Minute / time.Duration(perMinute))
		r.burst = perMinute
	}
	return r
}

// Limiter returns the bucket for key, creating it on first use.
// Buckets unused for the idle period are dropped.
func (r *RateLimiter) Limiter(key string) *rate.Limiter {
	r.sweep()
	return r.buckets.Touch(key, r.idle, func() *rate.Limiter {
		return rate.NewLimiter(r.limit, r.burst)
	})
}

func (r *RateLimiter) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastSweep) < r.idle {
		return
	}
	r.lastSweep = time.Now()
	r.buckets.Sweep()
}

// Middleware keys by the session account when present, else by client IP.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.burst == 0 {
			c.Next()
			return
		}

		key := c.GetString(AccountIDKey)
		if key == "" {
			key = c.ClientIP()
		}
		if !r.Limiter(key).Allow() {
			c.Header("Retry-After", "60")
			utils.RespondError(c, http.StatusTooManyRequests, "Too many requests, please slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
