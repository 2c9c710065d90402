package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/derslik/derslik-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RateLimiter throttles requests per client IP with a fixed window counter.
// Good enough for protecting the login endpoint from credential stuffing;
// it is not a fairness mechanism.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
}

type window struct {
	count   int
	startAt time.Time
}

// NewRateLimiter creates a RateLimiter allowing limit requests per period
// for each client IP.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
	}

	// Drop windows that have long expired so the map stays bounded.
	go func() {
		for range time.Tick(time.Minute) {
			rl.cleanup()
		}
	}()

	return rl
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
// Throttled responses carry a Retry-After header.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		rl.mu.Lock()
		w, ok := rl.windows[ip]
		if !ok || now.Sub(w.startAt) >= rl.period {
			w = &window{startAt: now}
			rl.windows[ip] = w
		}
		w.count++
		over := w.count > rl.limit
		retryIn := w.startAt.Add(rl.period).Sub(now)
		rl.mu.Unlock()

		if over {
			c.Header("Retry-After", strconv.Itoa(int(retryIn.Seconds())+1))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, w := range rl.windows {
		if time.Since(w.startAt) > 2*rl.period {
			delete(rl.windows, ip)
		}
	}
}
