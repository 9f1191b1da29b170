package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsBurstThenRejects(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}, nil)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{}, nil)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("1.2.3.4"))
	}
	assert.Equal(t, 0, rl.Len())
}

func TestRateLimiterPrunesIdleEntries(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute}, nil)
	rl.now = func() time.Time { return now }

	rl.Allow("1.1.1.1")
	rl.Allow("2.2.2.2")
	assert.Equal(t, 2, rl.Len())

	now = now.Add(2 * time.Minute)
	rl.Allow("3.3.3.3")
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimitMiddlewareWrites429(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}, nil)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", ClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", ClientIP(req))
}
