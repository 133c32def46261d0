// Package exposure scores driving-route alternatives by pollution exposure
// and ranks them cleanest first.
package exposure

import (
	"errors"

	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

// ErrNoScoreableRoutes indicates that no route alternative could be routed
// and scored. Individual alternatives failing is expected and absorbed;
// losing all of them is terminal for a planning run.
var ErrNoScoreableRoutes = errors.New("could not route and score any alternative")

// DefaultSampleBudget bounds the pollution lookups per route.
const DefaultSampleBudget = 10

// RouteScore is the pollution-exposure summary of one route alternative.
// Scores are ordered by (MeanAQI, MaxAQI) ascending: mean is the primary
// key, max breaks ties.
type RouteScore struct {
	// Name is the route alternative's identity, e.g. "Avoid highways".
	Name string

	// DistanceKm is the route length in kilometers.
	DistanceKm float64

	// DurationMinutes is the estimated travel time in minutes.
	DurationMinutes float64

	// MeanAQI is the arithmetic mean of the successful pollution samples.
	MeanAQI float64

	// MaxAQI is the worst pollution sample along the route.
	MaxAQI int

	// SampleCount is the number of successful samples, always at least 1.
	SampleCount int

	// MapsURL is a navigation deep link for the route's endpoints.
	MapsURL string

	// Geometry is the full route polyline, kept for rendering and
	// proximity matching.
	Geometry []geo.Coordinate
}
