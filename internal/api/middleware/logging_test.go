package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/asthmaguardian/asthmaguardian/internal/api/middleware"
)

// captureLog runs one request through Logger (optionally wrapped by outer
// middleware) and returns the decoded log entry.
func captureLog(t *testing.T, outer func(http.Handler) http.Handler, inner http.HandlerFunc, req *http.Request) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	var h http.Handler = middleware.Logger(zerolog.New(&buf))(inner)
	if outer != nil {
		h = outer(h)
	}

	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output: %s", buf.String())
	return entry
}

func TestLogger_RequestFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test/path", http.NoBody)
	req.Header.Set("User-Agent", "test-agent")

	entry := captureLog(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("response body"))
	}, req)

	assert.Equal(t, "request completed", entry["message"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/test/path", entry["path"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, float64(13), entry["bytes"]) // len("response body")
	assert.Equal(t, "test-agent", entry["user_agent"])
	assert.NotEmpty(t, entry["duration"])
}

func TestLogger_ErrorStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/resource", http.NoBody)

	entry := captureLog(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, req)

	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, float64(500), entry["status"])
}

func TestLogger_ImplicitStatusOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)

	entry := captureLog(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		// No WriteHeader call; the implicit status is 200.
		_, _ = w.Write([]byte("ok"))
	}, req)

	assert.Equal(t, float64(200), entry["status"])
}

func TestLogger_RequestIDFromChain(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)

	entry := captureLog(t, middleware.RequestID, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, req)

	requestID, ok := entry["request_id"].(string)
	assert.True(t, ok)
	assert.Contains(t, requestID, "req_")
}

func TestLogger_TraceCorrelation(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer func() { _ = tp.Shutdown(context.Background()) }()

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)

	entry := captureLog(t, middleware.Tracing("test-service"), func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, req)

	traceID, ok := entry["trace_id"].(string)
	assert.True(t, ok)
	assert.Len(t, traceID, 32) // 16 bytes hex

	spanID, ok := entry["span_id"].(string)
	assert.True(t, ok)
	assert.Len(t, spanID, 16) // 8 bytes hex
}

func TestLogger_NoTraceFieldsWithoutSpan(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)

	entry := captureLog(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, req)

	_, hasTrace := entry["trace_id"]
	assert.False(t, hasTrace, "trace_id should be omitted without an active span")
}
