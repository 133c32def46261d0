// Package airquality provides pollution index observation and forecast access.
package airquality

import (
	"context"
	"errors"
	"time"

	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

// Provider errors.
var (
	// ErrNoData indicates the forecast service returned nothing usable for
	// the requested region.
	ErrNoData = errors.New("no forecast data available")
	// ErrEmptyWindow indicates the forecast has no entries inside the
	// requested look-ahead window.
	ErrEmptyWindow = errors.New("no forecast entries in the look-ahead window")
	// ErrProviderUnavailable indicates the air quality provider is down or
	// returned a malformed response.
	ErrProviderUnavailable = errors.New("air quality provider unavailable")
)

// Horizon bounds for travel-day selection.
const (
	// DefaultHorizonDays is the look-ahead used when the caller does not
	// choose one.
	DefaultHorizonDays = 3
	// MaxHorizonDays caps the look-ahead; forecast services rarely publish
	// further out.
	MaxHorizonDays = 7
)

// ForecastDay is one day of the pollution outlook. Providers emit several
// entries per calendar date, one per pollutant; after MergeByDate at most
// one entry per date remains, carrying the worst index.
type ForecastDay struct {
	// Date is the calendar date at UTC midnight.
	Date time.Time

	// AQI is the pollution index, higher is worse.
	AQI int

	// Category is the provider's label for the index level, e.g. "Moderate".
	Category string

	// Pollutant names the pollutant responsible for the index.
	Pollutant string
}

// Observer reports the current pollution index near a point.
type Observer interface {
	// ObservePollution returns the worst current index near the coordinate.
	// ok is false when no usable data exists near the point; observation
	// never fails hard.
	ObservePollution(ctx context.Context, coord geo.Coordinate) (index int, ok bool)

	// Name identifies the provider in logs and health reporting.
	Name() string
}

// Forecaster retrieves the multi-day pollution outlook for a postal region.
type Forecaster interface {
	// FetchForecast returns raw forecast entries for the postal code,
	// possibly several per date. Fails with ErrNoData when the service
	// returns nothing usable.
	FetchForecast(ctx context.Context, zipCode string) ([]ForecastDay, error)

	// Name identifies the provider in logs and health reporting.
	Name() string
}

// Error carries a provider's diagnosis of a failed forecast fetch. Err
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
