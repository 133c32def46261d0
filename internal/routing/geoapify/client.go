// Package geoapify provides a client for the Geoapify Routing API.
package geoapify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/asthmaguardian/asthmaguardian/internal/provider/resilience"
	"github.com/asthmaguardian/asthmaguardian/internal/routing"
	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

const (
	// ProviderName is the identifier used in logs and the health registry.
	ProviderName = "geoapify-routing"

	// DefaultBaseURL points at the hosted Geoapify API.
	DefaultBaseURL = "https://api.geoapify.com"

	// DefaultTimeout is the default request timeout. Routing is the
	// slowest provider call in the pipeline, so it gets a longer budget
	// than geocoding or air quality.
	DefaultTimeout = 30 * time.Second
)

// HTTPDoer is the transport contract, satisfied by both *http.Client and
// the resilient client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig configures the Geoapify routing client. Only APIKey is
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

// Client calls the Geoapify routing API.
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

// Name implements routing.Provider.
func (c *Client) Name() string {
	return ProviderName
}

// Wire types (Geoapify routing GeoJSON response).

type routingResponse struct {
	Features []routingFeature `json:"features"`
}

type routingFeature struct {
	Properties routeProperties   `json:"properties"`
	Geometry   multiLineGeometry `json:"geometry"`
}

type routeProperties struct {
	Distance float64 `json:"distance"`
	Time     float64 `json:"time"`
}

type multiLineGeometry struct {
	// Coordinates is a MultiLineString: one or more line segments of
	// [lon, lat] pairs.
	Coordinates [][][]float64 `json:"coordinates"`
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	ErrorName  string `json:"error"`
	Message    string `json:"message"`
}

// GetRoute computes a single driving route for the given endpoints and
// preference. The first feature of the response wins; zero features or an
// empty geometry map to routing.ErrNoRoute.
func (c *Client) GetRoute(ctx context.Context, req routing.RouteRequest) (*routing.Route, error) {
	optimization := req.Preference.Optimization
	if optimization == "" {
		optimization = routing.OptimizationBalanced
	}

	query := url.Values{}
	query.Set("waypoints", fmt.Sprintf("%v,%v|%v,%v",
		req.Origin.Lat, req.Origin.Lon,
		req.Destination.Lat, req.Destination.Lon))
	query.Set("mode", "drive")
	query.Set("type", string(optimization))
	query.Set("format", "geojson")
	query.Set("apiKey", c.apiKey)
	if req.Preference.Avoid != "" {
		query.Set("avoid", req.Preference.Avoid)
	}

	reqURL := fmt.Sprintf("%s/v1/routing?%s", c.baseURL, query.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().
		Str("preference", req.Preference.Name).
		Str("type", string(optimization)).
		Str("avoid", req.Preference.Avoid).
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Msg("requesting route from Geoapify")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "routing provider did not respond",
			Err:      routing.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFor(resp.StatusCode, respBody)
	}

	var result routingResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding routing response: %w", err)
	}

	if len(result.Features) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "no routes returned for the given points",
			Err:      routing.ErrNoRoute,
		}
	}

	route := flattenRoute(&result.Features[0])
	if len(route.Geometry) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "EMPTY_GEOMETRY",
			Message:  "route is missing geometry",
			Err:      routing.ErrNoRoute,
		}
	}

	c.logger.Debug().
		Str("preference", req.Preference.Name).
		Float64("distance_m", route.DistanceMeters).
		Float64("duration_s", route.DurationSeconds).
		Int("points", len(route.Geometry)).
		Msg("received route from Geoapify")

	return route, nil
}

// errorFor maps a non-200 Geoapify response to a domain error.
func (c *Client) errorFor(statusCode int, body []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("routing provider returned status %d", statusCode)
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "routing provider rate limit hit",
			Err:      routing.ErrRateLimitExceeded,
		}
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "FORBIDDEN",
			Message:  "routing provider rejected the API key",
			Err:      routing.ErrProviderUnavailable,
		}
	case statusCode == http.StatusBadRequest:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "BAD_REQUEST",
			Message:  apiErr.Message,
			Err:      routing.ErrNoRoute,
		}
	case statusCode >= 500:
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "routing provider returned a server error",
			Err:      routing.ErrProviderUnavailable,
		}
	default:
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  apiErr.Message,
			Err:      routing.ErrProviderUnavailable,
		}
	}
}

// flattenRoute converts a routing feature to the domain model, collapsing
// the MultiLineString into one ordered polyline.
func flattenRoute(feat *routingFeature) *routing.Route {
	var points []geo.Coordinate
	for _, line := range feat.Geometry.Coordinates {
		for _, pair := range line {
			if len(pair) < 2 {
				continue
			}
			// GeoJSON pairs are [lon, lat].
			points = append(points, geo.Coordinate{Lat: pair[1], Lon: pair[0]})
		}
	}

	return &routing.Route{
		Geometry:        points,
		DistanceMeters:  feat.Properties.Distance,
		DurationSeconds: feat.Properties.Time,
	}
}
