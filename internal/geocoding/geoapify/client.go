// Package geoapify provides a client for the Geoapify Geocoding API.
package geoapify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/asthmaguardian/asthmaguardian/internal/geocoding"
	"github.com/asthmaguardian/asthmaguardian/internal/provider/resilience"
	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

const (
	// ProviderName is the identifier used in logs and the health registry.
	ProviderName = "geoapify-geocoding"

	// DefaultBaseURL points at the hosted Geoapify API.
	DefaultBaseURL = "https://api.geoapify.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 20 * time.Second
)

// HTTPDoer is the transport contract, satisfied by both *http.Client and
// the resilient client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig configures the Geoapify geocoding client. Only APIKey is
// required; every other zero value gets a sensible default.
type ClientConfig struct {
	APIKey string

	// BaseURL overrides the hosted API endpoint, mainly for tests.
	BaseURL string

	// HTTPClient overrides the transport. When nil the client builds a
	// resilient transport with circuit breaker and retries.
	HTTPClient HTTPDoer

	Timeout time.Duration

	// Registry and Metrics feed the provider health surface (optional).
	Registry *resilience.Registry
	Metrics  *resilience.Metrics

	Logger zerolog.Logger
}

// Client calls the Geoapify geocoding API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient fills defaults and builds the resilient transport when none
// was supplied.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.Registry = cfg.Registry
		clientCfg.Metrics = cfg.Metrics
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name implements geocoding.Geocoder.
func (c *Client) Name() string {
	return ProviderName
}

// Wire types (Geoapify geocoding GeoJSON response).

type geocodeResponse struct {
	Features []geocodeFeature `json:"features"`
}

type geocodeFeature struct {
	Geometry   pointGeometry     `json:"geometry"`
	Properties geocodeProperties `json:"properties"`
}

type pointGeometry struct {
	// Coordinates is [lon, lat] per GeoJSON.
	Coordinates []float64 `json:"coordinates"`
}

type geocodeProperties struct {
	Formatted string `json:"formatted"`
}

// Geocode resolves a free-text place name to a coordinate and label.
// The first feature of the response wins; zero features maps to
// geocoding.ErrNotFound.
func (c *Client) Geocode(ctx context.Context, place string) (*geocoding.Location, error) {
	query := url.Values{}
	query.Set("text", place)
	query.Set("apiKey", c.apiKey)

	reqURL := fmt.Sprintf("%s/v1/geocode/search?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().
		Str("place", place).
		Msg("geocoding place via Geoapify")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "geocoding provider did not respond",
			Err:      geocoding.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("geocoding provider returned status %d", resp.StatusCode),
			Err:      geocoding.ErrProviderUnavailable,
		}
	}

	var result geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding geocode response: %w", err)
	}

	if len(result.Features) == 0 {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     "NOT_FOUND",
			Message:  fmt.Sprintf("no geocoding result for %q", place),
			Err:      geocoding.ErrNotFound,
		}
	}

	feat := result.Features[0]
	if len(feat.Geometry.Coordinates) < 2 {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     "MALFORMED_GEOMETRY",
			Message:  fmt.Sprintf("geocoding result for %q has no coordinates", place),
			Err:      geocoding.ErrNotFound,
		}
	}

	label := feat.Properties.Formatted
	if label == "" {
		label = place
	}

	loc := &geocoding.Location{
		Coordinate: geo.Coordinate{
			Lat: feat.Geometry.Coordinates[1],
			Lon: feat.Geometry.Coordinates[0],
		},
		Label: label,
	}

	c.logger.Debug().
		Str("place", place).
		Str("label", loc.Label).
		Float64("lat", loc.Coordinate.Lat).
		Float64("lon", loc.Coordinate.Lon).
		Msg("geocoded place")

	return loc, nil
}
