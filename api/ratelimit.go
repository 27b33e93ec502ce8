package api

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"cinetrack/config"
	"cinetrack/internal/i18n"
)

// ipLimiterEntry holds a rate limiter and last-seen timestamp for cleanup.
type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter manages per-IP rate limiters.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiterEntry
	rate     rate.Limit
	burst    int
	idle     time.Duration
}

// NewIPRateLimiter allows r events per second with the given burst. Entries
// idle for longer than idle are evicted until ctx is done.
func NewIPRateLimiter(ctx context.Context, r rate.Limit, burst int, idle time.Duration) *IPRateLimiter {
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	rl := &IPRateLimiter{
		limiters: make(map[string]*ipLimiterEntry),
		rate:     r,
		burst:    burst,
		idle:     idle,
	}
	go rl.cleanup(ctx)
	return rl
}

// NewIPRateLimiterFromSettings spreads cfg.Requests evenly over the window
// and allows the full allowance as a burst.
func NewIPRateLimiterFromSettings(ctx context.Context, cfg config.RateLimitSettings) *IPRateLimiter {
	requests := cfg.Requests
	if requests <= 0 {
		requests = config.DefaultSettings().RateLimit.Requests
	}
	window := cfg.Window()
	if window <= 0 {
		window = config.DefaultSettings().RateLimit.Window()
	}
	return NewIPRateLimiter(ctx, rate.Every(window/time.Duration(requests)), requests, window)
}

// getLimiter returns the rate limiter for the given IP, creating one if needed.
func (rl *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.limiters[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[ip] = &ipLimiterEntry{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (rl *IPRateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle(time.Now())
		}
	}
}

func (rl *IPRateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > rl.idle {
			delete(rl.limiters, ip)
		}
	}
}

// allow reports whether ip may proceed, and otherwise how long to wait.
func (rl *IPRateLimiter) allow(ip string) (bool, time.Duration) {
	reservation := rl.getLimiter(ip).Reserve()
	if !reservation.OK() {
		return false, time.Minute
	}
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return false, delay
	}
	return true, 0
}

// getClientIP extracts the client IP, honouring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

// RateLimitMiddleware answers 429 with a Retry-After header once a client
// IP exceeds its allowance.
func RateLimitMiddleware(rl *IPRateLimiter, messages *i18n.Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := rl.allow(getClientIP(r))
			if !ok {
				seconds := int(math.Ceil(wait.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				writeMessage(w, http.StatusTooManyRequests, messages.ForRequest(r, i18n.RateLimited))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
