package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/asthmaguardian/asthmaguardian/internal/airquality"
	"github.com/asthmaguardian/asthmaguardian/internal/api/models"
	"github.com/asthmaguardian/asthmaguardian/internal/api/response"
)

// TravelDayAdvisor is the forecast service surface the travel-day endpoint
// consumes.
type TravelDayAdvisor interface {
	SuggestTravelDay(ctx context.Context, zipCode string, lookAheadDays int) (*airquality.TravelWindow, error)
}

// TravelDayHandler handles travel-day recommendation endpoints.
type TravelDayHandler struct {
	advisor TravelDayAdvisor
}

// NewTravelDayHandler creates a new TravelDayHandler.
func NewTravelDayHandler(advisor TravelDayAdvisor) *TravelDayHandler {
	return &TravelDayHandler{advisor: advisor}
}

// SuggestTravelDay handles GET /v1/travel-days - recommend the cleanest day
// in the look-ahead window for a postal code.
func (h *TravelDayHandler) SuggestTravelDay(w http.ResponseWriter, r *http.Request) {
	zip := r.URL.Query().Get("zip")

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, r, "invalid query parameter", []models.FieldError{
				{Field: "days", Message: "must be an integer"},
			})
			return
		}
		days = parsed
	}

	window, err := h.advisor.SuggestTravelDay(r.Context(), zip, days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, travelWindowToModel(*window))
}
