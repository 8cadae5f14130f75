package middleware

import (
	"net/http"
	"sync"
	"time"

	"pharmapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

// window counts requests per client IP in fixed windows.
type window struct {
	count int
	end   time.Time
}

type limiter struct {
	name   string
	limit  int
	period time.Duration

	mu      sync.Mutex
	clients map[string]*window
	purged  time.Time
}

func newLimiter(name string, limit int, period time.Duration) *limiter {
	return &limiter{name: name, limit: limit, period: period, clients: make(map[string]*window)}
}

// allow records one request from ip and reports whether it is within the
// limit, plus when the current window ends.
func (l *limiter) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.purged) > purgeInterval {
		l.purge(now)
	}

	w, ok := l.clients[ip]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.period)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

// purge drops expired windows so idle IPs do not accumulate. Caller holds mu.
func (l *limiter) purge(now time.Time) {
	purged := 0
	for ip, w := range l.clients {
		if now.After(w.end) {
			delete(l.clients, ip)
			purged++
		}
	}
	l.purged = now
	if purged > 0 {
		log.Debug().
			Str("limiter", l.name).
			Int("purged", purged).
			Int("remaining", len(l.clients)).
			Msg("rate limiter entries purged")
	}
}

func (l *limiter) handler(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, end := l.allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", end.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(message))
			return
		}
		c.Next()
	}
}

// ── Auth rate limiter ────────────────────────────────────────────────────────

var authLimiter = newLimiter("auth", 20, time.Minute)

// AuthRateLimiter limits credential attempts to 20 per minute per IP,
// shared by every route it guards.
func AuthRateLimiter() gin.HandlerFunc {
	return authLimiter.handler("Too many sign-in attempts. Try again in a minute.")
}

// ── General API rate limiter ─────────────────────────────────────────────────

// RateLimiter allows limit requests per period per client IP.
func RateLimiter(limit int, period time.Duration) gin.HandlerFunc {
	return newLimiter("api", limit, period).handler("Too many requests. Try again shortly.")
}
