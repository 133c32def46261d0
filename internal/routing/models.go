// Package routing provides driving-route computation between trip endpoints.
package routing

import (
	"context"
	"errors"

	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable covers provider outages and open circuits.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRoute means the endpoints cannot be connected by road.
	ErrNoRoute = errors.New("no route found between the given points")
	// ErrRateLimitExceeded means the provider quota is exhausted.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Provider computes driving routes. Implementations wrap one upstream
// routing API each.
type Provider interface {
	// GetRoute computes a single route for the given endpoints and preference.
	GetRoute(ctx context.Context, req RouteRequest) (*Route, error)
	// Name identifies the provider in logs and health reporting.
	Name() string
}

// Optimization selects the route optimization objective.
type Optimization string

const (
	// OptimizationBalanced trades off distance against travel time.
	OptimizationBalanced Optimization = "balanced"
	// OptimizationShort minimizes total distance.
	OptimizationShort Optimization = "short"
	// OptimizationFewerManeuvers minimizes the number of turns.
	OptimizationFewerManeuvers Optimization = "less_maneuvers"
)

// AvoidHighways is the road-feature avoidance flag for highway-free routes.
const AvoidHighways = "highways"

// Preference is one named routing configuration. Each preference yields at
// most one candidate route per trip; the name is the alternative's identity.
type Preference struct {
	Name         string
	Optimization Optimization
	// Avoid names a road feature to route around, e.g. "highways".
	// Empty means no avoidance.
	Avoid string
}

// DefaultPreferences returns the candidate configurations evaluated for a
// trip when the caller does not choose its own set.
func DefaultPreferences() []Preference {
	return []Preference{
		{Name: "Shortest", Optimization: OptimizationShort},
		{Name: "Balanced", Optimization: OptimizationBalanced},
		{Name: "Avoid highways", Optimization: OptimizationBalanced, Avoid: AvoidHighways},
	}
}

// RouteRequest is the request for computing a single route.
type RouteRequest struct {
	Origin      geo.Coordinate
	Destination geo.Coordinate
	Preference  Preference
}

// Route represents one computed route.
type Route struct {
	// Geometry is the route polyline from origin to destination, at least
	// two points.
	Geometry []geo.Coordinate

	// DistanceMeters is the total route distance in meters.
	DistanceMeters float64

	// DurationSeconds is the estimated travel time in seconds.
	DurationSeconds float64
}

// Error carries a provider's diagnosis of a failed route request. Code is
// the provider-specific error code and Err wraps the matching sentinel so
// callers can test with errors.Is.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the failure is transient and worth retrying.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
