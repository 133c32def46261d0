package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asthmaguardian/asthmaguardian/internal/api/middleware"
)

func limitedHandler(limit int, window time.Duration) http.Handler {
	cfg := middleware.RateLimitConfig{RequestLimit: limit, WindowLength: window}
	return middleware.RateLimitByIP(cfg)(okHandler())
}

func hit(h http.Handler, ip, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitByIP_AllowsWithinLimit(t *testing.T) {
	h := limitedHandler(5, time.Minute)

	for i := 1; i <= 5; i++ {
		rec := hit(h, "192.168.1.1", "/test")
		assert.Equal(t, http.StatusOK, rec.Code, fmt.Sprintf("request %d", i))
	}
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	h := limitedHandler(3, time.Minute)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(h, "10.0.0.1", "/test").Code)
	}

	rec := hit(h, "10.0.0.1", "/test")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded")
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestRateLimitByIP_CountsPerIP(t *testing.T) {
	h := limitedHandler(2, time.Minute)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, hit(h, "172.16.0.1", "/test").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "172.16.0.1", "/test").Code)

	// A different client keeps its own budget.
	assert.Equal(t, http.StatusOK, hit(h, "172.16.0.2", "/test").Code)
}

func TestRateLimitByIP_ProblemBody(t *testing.T) {
	h := middleware.RequestID(limitedHandler(1, time.Minute))

	require.Equal(t, http.StatusOK, hit(h, "203.0.113.1", "/test/path").Code)

	rec := hit(h, "203.0.113.1", "/test/path")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "too-many-requests")
	assert.Contains(t, body, "Rate limit exceeded")
	assert.Contains(t, body, "/test/path")
	assert.Contains(t, body, "req_")
}

func TestRateLimitPresets(t *testing.T) {
	assert.Equal(t, 30, middleware.ExpensiveRateLimit.RequestLimit)
	assert.Equal(t, time.Minute, middleware.ExpensiveRateLimit.WindowLength)
	assert.Equal(t, 100, middleware.StandardRateLimit.RequestLimit)
	assert.Equal(t, time.Minute, middleware.StandardRateLimit.WindowLength)
}
