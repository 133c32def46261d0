package handler

import (
	"net/http"
	"time"

	"github.com/asthmaguardian/asthmaguardian/internal/api/models"
	"github.com/asthmaguardian/asthmaguardian/internal/api/response"
	"github.com/asthmaguardian/asthmaguardian/internal/provider/resilience"
)

// OpsHandler serves the liveness, readiness, and system status endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
}

func NewOpsHandler(version, buildTime string, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health. Liveness plus build identity.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. The service has no local state
// to warm up, so readiness degrades only when a provider circuit has opened.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	for _, p := range h.registry.GetAllHealth() {
		if !p.IsHealthy() && !p.IsDegraded() {
			status = models.HealthStatusDegraded
			break
		}
	}
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	})
}

// SystemStatus handles GET /v1/ops/status, reporting per-provider circuit
// state and request history from the resilience registry.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	all := h.registry.GetAllHealth()

	overall := models.HealthStatusOK
	providers := make([]models.ProviderStatus, 0, len(all))
	for _, p := range all {
		ps := models.ProviderStatus{
			Provider:      p.Name,
			Status:        providerStatus(p),
			CircuitState:  p.CircuitState.String(),
			LastSuccessAt: tsPtr(p.LastSuccessAt),
			LastFailureAt: tsPtr(p.LastFailureAt),
		}
		if p.LastError != "" {
			msg := p.LastError
			ps.LastError = &msg
		}
		if ps.Status != models.HealthStatusOK {
			overall = models.HealthStatusDegraded
		}
		providers = append(providers, ps)
	}

	response.JSON(w, r, http.StatusOK, models.SystemStatus{
		Status:    overall,
		Time:      models.Timestamp(time.Now()),
		Providers: providers,
	})
}

func providerStatus(p *resilience.ProviderHealth) models.HealthStatus {
	switch {
	case p.IsHealthy():
		return models.HealthStatusOK
	case p.IsDegraded():
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusFail
	}
}

func tsPtr(t *time.Time) *models.Timestamp {
	if t == nil {
		return nil
	}
	ts := models.Timestamp(*t)
	return &ts
}
