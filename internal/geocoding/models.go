// Package geocoding resolves free-text place names to coordinates and
// canonical labels via an external geocoding provider.
package geocoding

import (
	"context"
	"errors"

	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

// Sentinel errors for geocoding operations.
var (
	// ErrNotFound means the provider returned zero matches for the place.
	ErrNotFound = errors.New("no geocoding result for place")
	// ErrProviderUnavailable covers provider outages and open circuits.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
)

// Location is a resolved place.
type Location struct {
	// Coordinate is the resolved position.
	Coordinate geo.Coordinate
	// Label is the provider's canonical formatted name, falling back to the
	// query text when the provider omits one.
	Label string
}

// Geocoder resolves a free-text place name to a Location.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (*Location, error)
	// Name identifies the provider in logs and health reporting.
	Name() string
}

// Error carries a provider's diagnosis of a failed geocode. Err wraps
// the matching sentinel so callers can test with errors.Is.
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
