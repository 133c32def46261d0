// Package planner orchestrates the full trip-planning pipeline: travel-day
// selection, geocoding, route ranking and proximity stops, assembled into a
// single TripPlan.
package planner

import (
	"errors"
	"time"

	"github.com/asthmaguardian/asthmaguardian/internal/airquality"
	"github.com/asthmaguardian/asthmaguardian/internal/api/models"
	"github.com/asthmaguardian/asthmaguardian/internal/exposure"
	"github.com/asthmaguardian/asthmaguardian/internal/geocoding"
	"github.com/asthmaguardian/asthmaguardian/internal/places"
)

// Service errors.
var (
	// ErrNoPlan indicates no plan has been created yet in this process.
	ErrNoPlan = errors.New("no trip plan available")
)

// PlanRequest is the input to a full planning run.
type PlanRequest struct {
	// Origin is the free-text starting place.
	Origin string

	// Destination is the free-text destination place.
	Destination string

	// HomeZip is the postal code the air quality forecast is fetched for.
	HomeZip string

	// LookAheadDays is the travel-day look-ahead horizon. Zero selects the
	// default.
	LookAheadDays int
}

// TripPlan is the assembled result of one planning run.
type TripPlan struct {
	// ID uniquely identifies the plan.
	ID string

	// CreatedAt is when the plan was assembled.
	CreatedAt time.Time

	// Origin and Destination are the geocoded endpoints.
	Origin      geocoding.Location
	Destination geocoding.Location

	// HomeZip is the postal code the forecast was fetched for.
	HomeZip string

	// Window is the forecast window with the recommended travel day.
	Window airquality.TravelWindow

	// Routes are the scored route alternatives, cleanest first. The first
	// entry is the recommendation.
	Routes []exposure.RouteScore

	// PediatricStops and FoodStops are advisory stops near the recommended
	// route. Either may be empty.
	PediatricStops []places.ProximityStop
	FoodStops      []places.ProximityStop
}

// BestRoute returns the recommended route score.
func (p *TripPlan) BestRoute() exposure.RouteScore {
	return p.Routes[0]
}

// ValidationError is returned when the plan request is invalid.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
