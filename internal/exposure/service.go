package exposure

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/rs/zerolog"

	"github.com/asthmaguardian/asthmaguardian/internal/airquality"
	"github.com/asthmaguardian/asthmaguardian/internal/routing"
	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

// ServiceConfig holds configuration for the exposure service.
type ServiceConfig struct {
	// Router computes candidate routes.
	Router routing.Provider

	// Observer reports the current pollution index near a point.
	Observer airquality.Observer

	// Logger for service operations.
	Logger zerolog.Logger

	// SampleBudget caps pollution lookups per route (default: 10).
	SampleBudget int
}

// Service ranks route alternatives between two points by pollution
// exposure.
type Service struct {
	router       routing.Provider
	observer     airquality.Observer
	logger       zerolog.Logger
	sampleBudget int
}

// NewService creates a new exposure service.
func NewService(cfg ServiceConfig) *Service {
	sampleBudget := cfg.SampleBudget
	if sampleBudget <= 0 {
		sampleBudget = DefaultSampleBudget
	}

	return &Service{
		router:       cfg.Router,
		observer:     cfg.Observer,
		logger:       cfg.Logger,
		sampleBudget: sampleBudget,
	}
}

// RankRequest describes one ranking run between two resolved endpoints.
type RankRequest struct {
	Origin      geo.Coordinate
	Destination geo.Coordinate

	// OriginLabel and DestinationLabel are the geocoder's canonical names,
	// used to build the navigation link.
	OriginLabel      string
	DestinationLabel string

	// Preferences are the route configurations to evaluate. Empty falls
	// back to routing.DefaultPreferences.
	Preferences []routing.Preference
}

// RankRoutes routes every preference, samples pollution along each
// obtained polyline, and returns the scored survivors ordered cleanest
// first. A preference that cannot be routed, or whose route yields zero
// pollution samples, is skipped; RankRoutes fails with
// ErrNoScoreableRoutes only when nothing survives.
func (s *Service) RankRoutes(ctx context.Context, req RankRequest) ([]RouteScore, error) {
	prefs := req.Preferences
	if len(prefs) == 0 {
		prefs = routing.DefaultPreferences()
	}

	scores := make([]RouteScore, 0, len(prefs))
	for _, pref := range prefs {
		route, err := s.router.GetRoute(ctx, routing.RouteRequest{
			Origin:      req.Origin,
			Destination: req.Destination,
			Preference:  pref,
		})
		if err != nil {
			s.logger.Warn().
				Str("preference", pref.Name).
				Err(err).
				Msg("skipping unroutable alternative")
			continue
		}

		score, ok := s.ScoreRoute(ctx, pref.Name, route, req.OriginLabel, req.DestinationLabel)
		if !ok {
			s.logger.Warn().
				Str("preference", pref.Name).
				Msg("no pollution samples along route, excluding alternative")
			continue
		}

		scores = append(scores, *score)
	}

	if len(scores) == 0 {
		return nil, ErrNoScoreableRoutes
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].MeanAQI != scores[j].MeanAQI {
			return scores[i].MeanAQI < scores[j].MeanAQI
		}
		return scores[i].MaxAQI < scores[j].MaxAQI
	})

	s.logger.Info().
		Int("ranked", len(scores)).
		Str("cleanest", scores[0].Name).
		Float64("cleanest_mean_aqi", scores[0].MeanAQI).
		Msg("ranked route alternatives")

	return scores, nil
}

// ScoreRoute samples pollution along the route and aggregates the samples
// into a RouteScore. Lookups that fail or report no data are dropped
// without retry; ok is false when no sample succeeds, and such routes must
// be excluded rather than scored.
func (s *Service) ScoreRoute(ctx context.Context, name string, route *routing.Route, originLabel, destinationLabel string) (*RouteScore, bool) {
	samples := SamplePoints(route.Geometry, s.sampleBudget)

	sum := 0
	maxAQI := 0
	count := 0
	for _, point := range samples {
		index, ok := s.observer.ObservePollution(ctx, point)
		if !ok {
			continue
		}
		sum += index
		if count == 0 || index > maxAQI {
			maxAQI = index
		}
		count++
	}

	if count == 0 {
		return nil, false
	}

	return &RouteScore{
		Name:            name,
		DistanceKm:      route.DistanceMeters / 1000.0,
		DurationMinutes: route.DurationSeconds / 60.0,
		MeanAQI:         float64(sum) / float64(count),
		MaxAQI:          maxAQI,
		SampleCount:     count,
		MapsURL:         MapsURL(originLabel, destinationLabel),
		Geometry:        route.Geometry,
	}, true
}

// MapsURL builds a navigation deep link for the two endpoint labels.
func MapsURL(originLabel, destinationLabel string) string {
	return fmt.Sprintf("https://www.google.com/maps/dir/%s/%s",
		url.QueryEscape(originLabel), url.QueryEscape(destinationLabel))
}
