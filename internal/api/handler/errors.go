package handler

import (
	"errors"
	"net/http"

	"github.com/asthmaguardian/asthmaguardian/internal/airquality"
	"github.com/asthmaguardian/asthmaguardian/internal/api/response"
	"github.com/asthmaguardian/asthmaguardian/internal/exposure"
	"github.com/asthmaguardian/asthmaguardian/internal/geocoding"
	"github.com/asthmaguardian/asthmaguardian/internal/planner"
	"github.com/asthmaguardian/asthmaguardian/internal/provider/resilience"
)

// writeServiceError maps planner and provider errors onto problem responses.
// Validation failures carry their field errors; everything unrecognized is a
// plain 500 so provider internals never leak into client-facing details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *planner.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(w, r, "request validation failed", validationErr.Errors)
	case errors.Is(err, geocoding.ErrNotFound),
		errors.Is(err, airquality.ErrNoData),
		errors.Is(err, airquality.ErrEmptyWindow),
		errors.Is(err, planner.ErrNoPlan):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, exposure.ErrNoScoreableRoutes),
		errors.Is(err, geocoding.ErrProviderUnavailable),
		errors.Is(err, airquality.ErrProviderUnavailable),
		errors.Is(err, resilience.ErrCircuitOpen):
		response.ServiceUnavailable(w, r, err.Error())
	default:
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
