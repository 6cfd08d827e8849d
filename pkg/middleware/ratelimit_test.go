package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentworks/console/pkg/auth"
)

func TestRateLimiter_AllowWithinBudget(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{
		RequestsPerWindow: 3,
		WindowDuration:    time.Minute,
		BurstSize:         0,
	})

	for i := 0; i < 3; i++ {
		allowed, err := rl.Allow(context.Background(), "user:u-1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i)
	}

	allowed, err := rl.Allow(context.Background(), "user:u-1")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{
		RequestsPerWindow: 1,
		WindowDuration:    time.Minute,
	})

	allowed, _ := rl.Allow(context.Background(), "user:u-1")
	require.True(t, allowed)
	allowed, _ = rl.Allow(context.Background(), "user:u-1")
	require.False(t, allowed)

	allowed, _ = rl.Allow(context.Background(), "user:u-2")
	assert.True(t, allowed, "exhausting one key must not affect another")
}

func TestRateLimiter_Remaining(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{
		RequestsPerWindow: 5,
		WindowDuration:    time.Minute,
		BurstSize:         2,
	})

	remaining, err := rl.Remaining(context.Background(), "user:u-1")
	require.NoError(t, err)
	assert.Equal(t, 7, remaining)

	_, _ = rl.Allow(context.Background(), "user:u-1")
	remaining, _ = rl.Remaining(context.Background(), "user:u-1")
	assert.Equal(t, 6, remaining)
}

func TestRateLimitMiddleware_AllowsAndSetsHeaders(t *testing.T) {
	mw := NewRateLimitMiddleware(nil, nil)
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/demo/access", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), &auth.Principal{ID: "u-1", Provider: auth.ProviderOAuth}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitMiddleware_RejectsWhenExhausted(t *testing.T) {
	anon := NewRateLimiter(&RateLimitConfig{RequestsPerWindow: 1, WindowDuration: time.Minute})
	mw := NewRateLimitMiddleware(nil, anon)
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_SeparatesUsersFromAnonymous(t *testing.T) {
	anon := NewRateLimiter(&RateLimitConfig{RequestsPerWindow: 1, WindowDuration: time.Minute})
	user := NewRateLimiter(&RateLimitConfig{RequestsPerWindow: 10, WindowDuration: time.Minute})
	mw := NewRateLimitMiddleware(user, anon)
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Exhaust the anonymous budget.
	anonReq := httptest.NewRequest(http.MethodGet, "/", nil)
	anonReq.RemoteAddr = "10.0.0.1:1234"
	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), anonReq)
	}

	// An authenticated request from the same address still passes.
	userReq := httptest.NewRequest(http.MethodGet, "/", nil)
	userReq.RemoteAddr = "10.0.0.1:1234"
	userReq = userReq.WithContext(auth.WithPrincipal(userReq.Context(), &auth.Principal{ID: "u-1", Provider: auth.ProviderOAuth}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, userReq)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", clientIP(req))

	req.Header.Set("X-Real-IP", "192.168.1.5")
	assert.Equal(t, "192.168.1.5", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", clientIP(req))

	// Chained proxies append to the list; only the originating client
	// matters for keying, or one client fans out across many buckets.
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 70.41.3.18, 150.172.238.178")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
