package airquality

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig configures the travel-day service.
type ServiceConfig struct {
	// Forecaster supplies the per-day AQI data.
	Forecaster Forecaster

	Logger zerolog.Logger

	// DefaultHorizonDays is the look-ahead used when the caller passes
	// none (optional, defaults to DefaultHorizonDays).
	DefaultHorizonDays int
}

// Service answers travel-day questions on top of a forecast provider.
type Service struct {
	forecaster     Forecaster
	logger         zerolog.Logger
	defaultHorizon int
}

// NewService builds a Service, filling in the default horizon.
func NewService(cfg ServiceConfig) *Service {
	defaultHorizon := cfg.DefaultHorizonDays
	if defaultHorizon <= 0 {
		defaultHorizon = DefaultHorizonDays
	}

	return &Service{
		forecaster:     cfg.Forecaster,
		logger:         cfg.Logger,
		defaultHorizon: defaultHorizon,
	}
}

// TravelWindow fetches the forecast for a postal code, merges it to one
// worst-case entry per day, and recommends the lowest-index day within the
// look-ahead horizon. A non-positive horizon falls back to the service
// default; horizons beyond MaxHorizonDays are clamped.
func (s *Service) TravelWindow(ctx context.Context, zipCode string, horizonDays int) (*TravelWindow, error) {
	if horizonDays <= 0 {
		horizonDays = s.defaultHorizon
	}
	if horizonDays > MaxHorizonDays {
		horizonDays = MaxHorizonDays
	}

	entries, err := s.forecaster.FetchForecast(ctx, zipCode)
	if err != nil {
		return nil, err
	}

	merged := MergeByDate(entries)

	window, err := SelectTravelDay(merged, time.Now(), horizonDays)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("zip", zipCode).
		Int("horizon_days", horizonDays).
		Int("window_days", len(window.Days)).
		Str("best_date", window.Best.Date.Format("2006-01-02")).
		Int("best_aqi", window.Best.AQI).
		Msg("selected travel day")

	return window, nil
}
