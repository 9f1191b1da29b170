package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mcoot/bananamath/internal/api/apierr"
	"github.com/mcoot/bananamath/internal/metrics"
)

// RateLimitConfig configures the IP-based rate limiter
type RateLimitConfig struct {
	RequestsPerSecond float64       // Requests allowed per second per IP; <= 0 disables limiting
	Burst             int           // Maximum burst size
	IdleTTL           time.Duration // Limiters unused for this long are dropped
}

// DefaultRateLimitConfig returns defaults suited to the auth endpoints
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             5,
		IdleTTL:           10 * time.Minute,
	}
}

// ipLimiterEntry tracks per-IP rate limiting state
type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter provides IP-based rate limiting for HTTP requests
type IPRateLimiter struct {
	config  RateLimitConfig
	metrics *metrics.Metrics

	mu        sync.Mutex
	limiters  map[string]*ipLimiterEntry
	lastPrune time.Time
	now       func() time.Time
}

// NewIPRateLimiter creates a new IP-based rate limiter. m may be nil.
func NewIPRateLimiter(cfg RateLimitConfig, m *metrics.Metrics) *IPRateLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRateLimitConfig().IdleTTL
	}
	return &IPRateLimiter{
		config:   cfg,
		metrics:  m,
		limiters: make(map[string]*ipLimiterEntry),
		now:      time.Now,
	}
}

// Allow checks if a request from the given IP should be allowed
func (rl *IPRateLimiter) Allow(ip string) bool {
	if rl.config.RequestsPerSecond <= 0 {
		return true
	}

	rl.mu.Lock()
	now := rl.now()
	rl.pruneLocked(now)
	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &ipLimiterEntry{
			limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), max(rl.config.Burst, 1)),
		}
		rl.limiters[ip] = entry
	}
	entry.lastSeen = now
	rl.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// pruneLocked drops idle limiters at most once per IdleTTL; rl.mu must be held
func (rl *IPRateLimiter) pruneLocked(now time.Time) {
	if now.Sub(rl.lastPrune) < rl.config.IdleTTL {
		return
	}
	rl.lastPrune = now
	cutoff := now.Add(-rl.config.IdleTTL)
	for ip, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, ip)
		}
	}
}

// Len returns the number of tracked IPs
func (rl *IPRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Middleware returns an HTTP middleware for rate limiting
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(ClientIP(r)) {
			rl.metrics.RecordRateLimited()
			apierr.WriteError(w, apierr.NewRateLimitedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the client IP from an HTTP request
// Handles X-Forwarded-For header for proxied requests
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First entry is the original client; spoofable without a trusted proxy
		if idx := strings.Index(xff, ","); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
