// Package handler provides HTTP handlers for the AsthmaGuardian API.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/asthmaguardian/asthmaguardian/internal/api/models"
	"github.com/asthmaguardian/asthmaguardian/internal/api/response"
	"github.com/asthmaguardian/asthmaguardian/internal/planner"
)

// TripPlanner is the planning service surface the trip endpoints consume.
type TripPlanner interface {
	PlanTrip(ctx context.Context, req planner.PlanRequest) (*planner.TripPlan, error)
	LatestPlan() (*planner.TripPlan, error)
}

// TripHandler handles trip planning endpoints.
type TripHandler struct {
	planner TripPlanner
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(p TripPlanner) *TripHandler {
	return &TripHandler{planner: p}
}

// PlanTrip handles POST /v1/trips:plan - run the full planning pipeline.
func (h *TripHandler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	var input models.TripPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	plan, err := h.planner.PlanTrip(r.Context(), planner.PlanRequest{
		Origin:        input.Origin,
		Destination:   input.Destination,
		HomeZip:       input.HomeZip,
		LookAheadDays: input.LookAheadDays,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, tripPlanToModel(plan))
}

// LatestPlan handles GET /v1/trips/latest - redisplay the most recent plan.
func (h *TripHandler) LatestPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.planner.LatestPlan()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, tripPlanToModel(plan))
}
