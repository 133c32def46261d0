package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/asthmaguardian/asthmaguardian/internal/airquality"
	"github.com/asthmaguardian/asthmaguardian/internal/api/models"
	"github.com/asthmaguardian/asthmaguardian/internal/exposure"
	"github.com/asthmaguardian/asthmaguardian/internal/geocoding"
	"github.com/asthmaguardian/asthmaguardian/internal/places"
	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

// zipRegex validates 5-digit postal codes.
var zipRegex = regexp.MustCompile(`^\d{5}$`)

// TravelDayPlanner recommends a travel day for a postal code.
type TravelDayPlanner interface {
	TravelWindow(ctx context.Context, zipCode string, horizonDays int) (*airquality.TravelWindow, error)
}

// RouteRanker scores route alternatives between two coordinates.
type RouteRanker interface {
	RankRoutes(ctx context.Context, req exposure.RankRequest) ([]exposure.RouteScore, error)
}

// StopFinder finds advisory stops near a route.
type StopFinder interface {
	PediatricStops(ctx context.Context, route []geo.Coordinate) []places.ProximityStop
	FoodStops(ctx context.Context, route []geo.Coordinate) []places.ProximityStop
}

// ServiceConfig holds configuration for the planner service.
type ServiceConfig struct {
	// Geocoder resolves place names to coordinates.
	Geocoder geocoding.Geocoder

	// TravelDays selects the recommended travel day.
	TravelDays TravelDayPlanner

	// Ranker scores and orders route alternatives.
	Ranker RouteRanker

	// Stops finds pediatric and food stops near the chosen route.
	Stops StopFinder

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service runs the planning pipeline and retains the last successful plan.
type Service struct {
	geocoder   geocoding.Geocoder
	travelDays TravelDayPlanner
	ranker     RouteRanker
	stops      StopFinder
	logger     zerolog.Logger

	mu       sync.RWMutex
	lastPlan *TripPlan
}

// NewService creates a new planner service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		geocoder:   cfg.Geocoder,
		travelDays: cfg.TravelDays,
		ranker:     cfg.Ranker,
		stops:      cfg.Stops,
		logger:     cfg.Logger,
	}
}

// PlanTrip runs the full pipeline: travel-day selection, geocoding, route
// ranking and proximity stops. Steps run sequentially; the first terminal
// failure aborts the run and leaves any previously cached plan in place.
// Proximity stops are advisory and never fail the plan.
func (s *Service) PlanTrip(ctx context.Context, req PlanRequest) (*TripPlan, error) {
	if fieldErrors := validatePlanRequest(req); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	window, err := s.travelDays.TravelWindow(ctx, req.HomeZip, req.LookAheadDays)
	if err != nil {
		return nil, fmt.Errorf("selecting travel day for %s: %w", req.HomeZip, err)
	}

	origin, err := s.geocoder.Geocode(ctx, req.Origin)
	if err != nil {
		return nil, fmt.Errorf("geocoding origin %q: %w", req.Origin, err)
	}

	destination, err := s.geocoder.Geocode(ctx, req.Destination)
	if err != nil {
		return nil, fmt.Errorf("geocoding destination %q: %w", req.Destination, err)
	}

	// The map links carry the user's own words, not the geocoder's
	// canonical labels.
	scores, err := s.ranker.RankRoutes(ctx, exposure.RankRequest{
		Origin:           origin.Coordinate,
		Destination:      destination.Coordinate,
		OriginLabel:      req.Origin,
		DestinationLabel: req.Destination,
	})
	if err != nil {
		return nil, fmt.Errorf("ranking routes: %w", err)
	}

	best := scores[0]
	plan := &TripPlan{
		ID:             "plan_" + uuid.New().String()[:22],
		CreatedAt:      time.Now(),
		Origin:         *origin,
		Destination:    *destination,
		HomeZip:        req.HomeZip,
		Window:         *window,
		Routes:         scores,
		PediatricStops: s.stops.PediatricStops(ctx, best.Geometry),
		FoodStops:      s.stops.FoodStops(ctx, best.Geometry),
	}

	s.mu.Lock()
	s.lastPlan = plan
	s.mu.Unlock()

	s.logger.Info().
		Str("plan_id", plan.ID).
		Str("origin", origin.Label).
		Str("destination", destination.Label).
		Str("travel_date", window.Best.Date.Format("2006-01-02")).
		Int("routes", len(scores)).
		Str("best_route", best.Name).
		Int("pediatric_stops", len(plan.PediatricStops)).
		Int("food_stops", len(plan.FoodStops)).
		Msg("trip plan assembled")

	return plan, nil
}

// LatestPlan returns the most recent successful plan without touching any
// provider. Returns ErrNoPlan when no run has succeeded yet.
func (s *Service) LatestPlan() (*TripPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastPlan == nil {
		return nil, ErrNoPlan
	}
	return s.lastPlan, nil
}

// RankRoutes geocodes both places and returns the scored alternatives
// without running the rest of the pipeline or touching the plan cache.
func (s *Service) RankRoutes(ctx context.Context, originQuery, destinationQuery string) ([]exposure.RouteScore, error) {
	var fieldErrors []models.FieldError
	if strings.TrimSpace(originQuery) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "origin", Message: "is required"})
	}
	if strings.TrimSpace(destinationQuery) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "destination", Message: "is required"})
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	origin, err := s.geocoder.Geocode(ctx, originQuery)
	if err != nil {
		return nil, fmt.Errorf("geocoding origin %q: %w", originQuery, err)
	}

	destination, err := s.geocoder.Geocode(ctx, destinationQuery)
	if err != nil {
		return nil, fmt.Errorf("geocoding destination %q: %w", destinationQuery, err)
	}

	return s.ranker.RankRoutes(ctx, exposure.RankRequest{
		Origin:           origin.Coordinate,
		Destination:      destination.Coordinate,
		OriginLabel:      originQuery,
		DestinationLabel: destinationQuery,
	})
}

// SuggestTravelDay returns the forecast window and recommended travel day
// for a postal code.
func (s *Service) SuggestTravelDay(ctx context.Context, zipCode string, lookAheadDays int) (*airquality.TravelWindow, error) {
	if !zipRegex.MatchString(zipCode) {
		return nil, &ValidationError{Errors: []models.FieldError{
			{Field: "zip", Message: "must be a 5-digit ZIP code"},
		}}
	}

	return s.travelDays.TravelWindow(ctx, zipCode, lookAheadDays)
}

// validatePlanRequest validates the planning input.
func validatePlanRequest(req PlanRequest) []models.FieldError {
	var errs []models.FieldError

	if strings.TrimSpace(req.Origin) == "" {
		errs = append(errs, models.FieldError{Field: "origin", Message: "is required"})
	}
	if strings.TrimSpace(req.Destination) == "" {
		errs = append(errs, models.FieldError{Field: "destination", Message: "is required"})
	}

	if req.HomeZip == "" {
		errs = append(errs, models.FieldError{Field: "homeZip", Message: "is required"})
	} else if !zipRegex.MatchString(req.HomeZip) {
		errs = append(errs, models.FieldError{Field: "homeZip", Message: "must be a 5-digit ZIP code"})
	}

	if req.LookAheadDays < 0 || req.LookAheadDays > airquality.MaxHorizonDays {
		errs = append(errs, models.FieldError{Field: "lookAheadDays", Message: "must be between 1 and 7"})
	}

	return errs
}
