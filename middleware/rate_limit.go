package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// visitor pairs a limiter with its last activity, so idle entries can be
// evicted.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-client-IP request budget for one route group.
// The auth and download routes get tighter budgets than the status probe,
// since each of their requests can cost a marketplace round trip.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	perMinute float64
	burst     int
}

// NewRateLimiter creates a limiter allowing perMinute requests per client IP,
// with short bursts up to burst.
func NewRateLimiter(perMinute float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors:  make(map[string]*visitor),
		perMinute: perMinute,
		burst:     burst,
	}
	go rl.evictIdle()
	return rl
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors[ip]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(rl.perMinute/60.0), rl.burst)
	rl.visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

// evictIdle drops visitors idle long enough that their bucket has fully
// refilled anyway.
func (rl *RateLimiter) evictIdle() {
	ticker := time.NewTicker(3 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 5*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// retryAfterSeconds is the advertised wait until one request's worth of
// budget is available again, at least one second.
func (rl *RateLimiter) retryAfterSeconds() int {
	if rl.perMinute <= 0 {
		return 1
	}
	return max(int(math.Ceil(60.0/rl.perMinute)), 1)
}

// Middleware returns the echo middleware enforcing this limiter.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.limiterFor(c.RealIP()).Allow() {
				c.Response().Header().Set("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
