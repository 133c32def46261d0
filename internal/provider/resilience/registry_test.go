package resilience_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asthmaguardian/asthmaguardian/internal/provider/resilience"
)

func TestRegistry_RegisterAndGetHealth(t *testing.T) {
	registry := resilience.NewRegistry()
	client := resilience.NewClient(resilience.DefaultClientConfig("provider-a"))

	registry.Register("provider-a", client)

	health := registry.GetHealth("provider-a")
	require.NotNil(t, health)
	assert.Equal(t, "provider-a", health.Name)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.Nil(t, health.LastSuccessAt)
	assert.Nil(t, health.LastFailureAt)
	assert.Empty(t, health.LastError)
}

func TestRegistry_GetHealthNotFound(t *testing.T) {
	registry := resilience.NewRegistry()

	assert.Nil(t, registry.GetHealth("unknown-provider"))
}

func TestRegistry_RecordSuccess(t *testing.T) {
	registry := resilience.NewRegistry()
	client := resilience.NewClient(resilience.DefaultClientConfig("provider-a"))
	registry.Register("provider-a", client)

	registry.RecordSuccess("provider-a")

	health := registry.GetHealth("provider-a")
	require.NotNil(t, health)
	require.NotNil(t, health.LastSuccessAt)
	assert.WithinDuration(t, time.Now(), *health.LastSuccessAt, time.Second)
	assert.Nil(t, health.LastFailureAt)
}

func TestRegistry_RecordFailure(t *testing.T) {
	registry := resilience.NewRegistry()
	client := resilience.NewClient(resilience.DefaultClientConfig("provider-a"))
	registry.Register("provider-a", client)

	registry.RecordFailure("provider-a", errors.New("connection refused"))

	health := registry.GetHealth("provider-a")
	require.NotNil(t, health)
	require.NotNil(t, health.LastFailureAt)
	assert.WithinDuration(t, time.Now(), *health.LastFailureAt, time.Second)
	assert.Equal(t, "connection refused", health.LastError)
	assert.Nil(t, health.LastSuccessAt)
}

func TestRegistry_RecordUnknownProviderDoesNotPanic(t *testing.T) {
	registry := resilience.NewRegistry()

	assert.NotPanics(t, func() {
		registry.RecordSuccess("unknown-provider")
		registry.RecordFailure("unknown-provider", errors.New("boom"))
	})
}

func TestRegistry_GetAllHealthSortedByName(t *testing.T) {
	registry := resilience.NewRegistry()
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		registry.Register(name, resilience.NewClient(resilience.DefaultClientConfig(name)))
	}

	all := registry.GetAllHealth()
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "bravo", all[1].Name)
	assert.Equal(t, "charlie", all[2].Name)
}

func TestRegistry_ProviderCount(t *testing.T) {
	registry := resilience.NewRegistry()
	assert.Equal(t, 0, registry.ProviderCount())

	registry.Register("provider-a", resilience.NewClient(resilience.DefaultClientConfig("provider-a")))
	registry.Register("provider-b", resilience.NewClient(resilience.DefaultClientConfig("provider-b")))

	assert.Equal(t, 2, registry.ProviderCount())
}

func TestClient_SelfRegistersAndReportsOutcomes(t *testing.T) {
	var statusCode atomic.Int32
	statusCode.Store(http.StatusOK)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(int(statusCode.Load()))
	}))
	defer server.Close()

	registry := resilience.NewRegistry()

	cfg := resilience.DefaultClientConfig("provider-a")
	cfg.DisableRetries = true
	cfg.Registry = registry
	client := resilience.NewClient(cfg)

	assert.Equal(t, 1, registry.ProviderCount())

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	health := registry.GetHealth("provider-a")
	require.NotNil(t, health)
	require.NotNil(t, health.LastSuccessAt)
	assert.Nil(t, health.LastFailureAt)

	statusCode.Store(http.StatusBadGateway)
	req, err = http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	health = registry.GetHealth("provider-a")
	require.NotNil(t, health)
	require.NotNil(t, health.LastFailureAt)
	assert.Contains(t, health.LastError, "server error")
}

func TestProviderHealth_States(t *testing.T) {
	tests := []struct {
		name         string
		state        gobreaker.State
		wantHealthy  bool
		wantDegraded bool
	}{
		{"closed is healthy", gobreaker.StateClosed, true, false},
		{"half-open is degraded", gobreaker.StateHalfOpen, false, true},
		{"open is unhealthy", gobreaker.StateOpen, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			health := &resilience.ProviderHealth{Name: "p", CircuitState: tt.state}
			assert.Equal(t, tt.wantHealthy, health.IsHealthy())
			assert.Equal(t, tt.wantDegraded, health.IsDegraded())
		})
	}
}
