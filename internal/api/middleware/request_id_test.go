package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asthmaguardian/asthmaguardian/internal/api/middleware"
)

func TestRequestID_GeneratesID(t *testing.T) {
	var ctxID string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = middleware.GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	require.NotEmpty(t, ctxID)
	assert.Contains(t, ctxID, "req_")
	assert.Equal(t, ctxID, rec.Header().Get("X-Request-Id"), "header and context must carry the same ID")
}

func TestRequestID_HonorsIncomingHeader(t *testing.T) {
	var ctxID string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = middleware.GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-Id", "existing_request_id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "existing_request_id", ctxID)
	assert.Equal(t, "existing_request_id", rec.Header().Get("X-Request-Id"))
}

func TestGetRequestID_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	assert.Empty(t, middleware.GetRequestID(req.Context()))
}

func TestRequestID_Unique(t *testing.T) {
	h := middleware.RequestID(okHandler())

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		id := rec.Header().Get("X-Request-Id")
		require.NotEmpty(t, id)
		require.False(t, seen[id], "request ID %s issued twice", id)
		seen[id] = true
	}
}
