// Package googleplaces provides a Google Places–backed points-of-interest
// provider using the official Google Maps client.
package googleplaces

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"

	"github.com/asthmaguardian/asthmaguardian/internal/places"
	"github.com/asthmaguardian/asthmaguardian/internal/provider/resilience"
	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

const (
	// ProviderName is the identifier used in logs and the health registry.
	ProviderName = "google-places"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 20 * time.Second

	// maxNearbyRadiusMeters is the Places API's radius ceiling.
	maxNearbyRadiusMeters = 50000
)

// placeTypes maps provider-neutral categories to Google place types.
// Nearby Search takes one type per request, so umbrella categories fan
// out to several.
var placeTypes = map[places.Category][]maps.PlaceType{
	places.CategoryHealthcare: {maps.PlaceTypeHospital, maps.PlaceTypeDoctor},
	places.CategoryHospital:   {maps.PlaceTypeHospital},
	places.CategoryClinic:     {maps.PlaceTypeDoctor},
	places.CategoryRestaurant: {maps.PlaceTypeRestaurant},
	places.CategoryFastFood:   {maps.PlaceTypeMealTakeaway},
	places.CategoryCafe:       {maps.PlaceTypeCafe},
}

// ClientConfig configures the Google places client. Only APIKey is
// required; every other zero value gets a sensible default.
type ClientConfig struct {
	APIKey string

	// BaseURL overrides the Google API endpoint, mainly for tests.
	BaseURL string

	Timeout time.Duration

	// Registry and Metrics feed the provider health surface (optional).
	Registry *resilience.Registry
	Metrics  *resilience.Metrics

	Logger zerolog.Logger
}

// Client is a Google Places points-of-interest provider.
type Client struct {
	maps   *maps.Client
	logger zerolog.Logger
}

// roundTripperFunc adapts the resilient doer into an http.RoundTripper so
// the Google client's requests pass through the circuit breaker.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// NewClient wraps the official maps client, routing its HTTP traffic
// through a resilient transport.
func NewClient(cfg ClientConfig) (*Client, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	resilientCfg := resilience.DefaultClientConfig(ProviderName)
	resilientCfg.Timeout = timeout
	resilientCfg.Registry = cfg.Registry
	resilientCfg.Metrics = cfg.Metrics
	resilient := resilience.NewClient(resilientCfg)

	options := []maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(&http.Client{
			Transport: roundTripperFunc(resilient.Do),
		}),
	}
	if cfg.BaseURL != "" {
		options = append(options, maps.WithBaseURL(cfg.BaseURL))
	}

	mc, err := maps.NewClient(options...)
	if err != nil {
		return nil, err
	}

	return &Client{
		maps:   mc,
		logger: cfg.Logger,
	}, nil
}

// Name implements places.Provider.
func (c *Client) Name() string {
	return ProviderName
}

// SearchPlaces returns places of the given categories inside the bounding
// box. Nearby Search is circular, so the box is approximated by its
// center and a radius reaching the corners; like the box itself, the
// circle over-admits and the caller's distance ranking does the real
// filtering.
func (c *Client) SearchPlaces(ctx context.Context, box geo.BoundingBox, categories []places.Category) ([]places.Place, error) {
	center := box.Center()

	radius := uint(box.CircumradiusKm() * 1000)
	if radius == 0 {
		radius = 1
	}
	if radius > maxNearbyRadiusMeters {
		radius = maxNearbyRadiusMeters
	}

	seen := make(map[string]bool)
	var found []places.Place
	for _, category := range categories {
		for _, placeType := range placeTypes[category] {
			resp, err := c.maps.NearbySearch(ctx, &maps.NearbySearchRequest{
				Location: &maps.LatLng{Lat: center.Lat, Lng: center.Lon},
				Radius:   radius,
				Type:     placeType,
			})
			if err != nil {
				return nil, &places.Error{
					Provider: ProviderName,
					Code:     "REQUEST_FAILED",
					Message:  "places lookup failed",
					Err:      places.ErrProviderUnavailable,
				}
			}

			for _, result := range resp.Results {
				if result.Name == "" || seen[result.Name] {
					continue
				}
				seen[result.Name] = true

				address := result.Vicinity
				if address == "" {
					address = result.FormattedAddress
				}

				found = append(found, places.Place{
					Name: result.Name,
					Coordinate: geo.Coordinate{
						Lat: result.Geometry.Location.Lat,
						Lon: result.Geometry.Location.Lng,
					},
					Address: address,
					Rating:  float64(result.Rating),
				})
			}
		}
	}

	c.logger.Debug().
		Int("places", len(found)).
		Uint("radius_m", radius).
		Msg("received places from Google")

	return found, nil
}
