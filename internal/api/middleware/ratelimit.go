package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/asthmaguardian/asthmaguardian/internal/api/models"
)

// RateLimitConfig bounds requests per client IP within a sliding window.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

var (
	// ExpensiveRateLimit applies to planning endpoints, which fan out to
	// several providers per request.
	ExpensiveRateLimit = RateLimitConfig{RequestLimit: 30, WindowLength: time.Minute}

	// StandardRateLimit applies to read endpoints.
	StandardRateLimit = RateLimitConfig{RequestLimit: 100, WindowLength: time.Minute}
)

// RateLimitByIP limits by client IP, using the address RealIP resolved
// earlier in the chain. Over-limit requests get a problem response.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	// httprate does not expose the window reset, so the full window is
	// the safe wait hint.
	retryAfter := strconv.Itoa(int(cfg.WindowLength / time.Second))

	tooMany := func(w http.ResponseWriter, r *http.Request) {
		problem := models.NewTooManyRequests(
			GetRequestID(r.Context()),
			"Rate limit exceeded. Please try again later.",
		)
		problem.Instance = r.URL.Path

		w.Header().Set("Retry-After", retryAfter)
		problem.Write(w)
	}

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(tooMany),
	)
}
