package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/asthmaguardian/asthmaguardian/internal/api/models"
	"github.com/asthmaguardian/asthmaguardian/internal/api/response"
	"github.com/asthmaguardian/asthmaguardian/internal/exposure"
)

// RouteRanker is the ranking service surface the route endpoints consume.
type RouteRanker interface {
	RankRoutes(ctx context.Context, originQuery, destinationQuery string) ([]exposure.RouteScore, error)
}

// RouteHandler handles route ranking endpoints.
type RouteHandler struct {
	ranker RouteRanker
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(ranker RouteRanker) *RouteHandler {
	return &RouteHandler{ranker: ranker}
}

// RankRoutes handles POST /v1/routes:rank - score alternatives by exposure.
func (h *RouteHandler) RankRoutes(w http.ResponseWriter, r *http.Request) {
	var input models.RouteRankRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	scores, err := h.ranker.RankRoutes(r.Context(), input.Origin, input.Destination)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := models.RankedRoutes{
		Origin:      input.Origin,
		Destination: input.Destination,
		Routes:      routeScoresToModel(scores),
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, resp)
}
