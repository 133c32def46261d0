// Package places finds points of interest near a route polyline.
package places

import (
	"context"
	"errors"

	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

// ErrProviderUnavailable indicates the places provider is down or returned
// a malformed response. Callers treat places as advisory and absorb this
// into an empty result.
var ErrProviderUnavailable = errors.New("places provider unavailable")

// Category is a provider-neutral point-of-interest category. Each provider
// maps these onto its own taxonomy.
type Category string

const (
	// CategoryHealthcare covers all healthcare facilities.
	CategoryHealthcare Category = "healthcare"
	// CategoryHospital covers hospitals.
	CategoryHospital Category = "hospital"
	// CategoryClinic covers clinics and practices.
	CategoryClinic Category = "clinic"
	// CategoryRestaurant covers sit-down restaurants.
	CategoryRestaurant Category = "restaurant"
	// CategoryFastFood covers fast food.
	CategoryFastFood Category = "fast_food"
	// CategoryCafe covers cafes.
	CategoryCafe Category = "cafe"
)

// Place is one point of interest returned by a provider.
type Place struct {
	// Name is the place's display name.
	Name string

	// Coordinate is the place's location.
	Coordinate geo.Coordinate

	// Address is the formatted address, possibly empty.
	Address string

	// Rating is the provider's popularity rating, 0 when the provider has
	// none.
	Rating float64
}

// ProximityStop is a place evaluated against a reference route.
type ProximityStop struct {
	Place

	// DistanceKm is the minimum perpendicular distance from the place to
	// the route polyline, never negative.
	DistanceKm float64
}

// Provider finds points of interest. Implementations wrap one upstream
// places API each.
type Provider interface {
	// SearchPlaces returns places of the given categories inside the
	// bounding box.
	SearchPlaces(ctx context.Context, box geo.BoundingBox, categories []Category) ([]Place, error)

	// Name identifies the provider in logs and health reporting.
	Name() string
}

// Error carries a provider's diagnosis of a failed places query. Err
// wraps the matching sentinel so callers can test with errors.Is.
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
