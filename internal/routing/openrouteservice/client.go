// Package openrouteservice provides a client for the OpenRouteService
// directions API, selectable as an alternative to the Geoapify router.
package openrouteservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/asthmaguardian/asthmaguardian/internal/provider/resilience"
	"github.com/asthmaguardian/asthmaguardian/internal/routing"
	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

const (
	// ProviderName is the identifier used in logs and the health registry.
	ProviderName = "openrouteservice"

	// DefaultBaseURL points at the hosted ORS API.
	DefaultBaseURL = "https://api.openrouteservice.org"

	// DefaultTimeout is the default request timeout. Routing is the
	// slowest provider call in the pipeline, so it gets a longer budget
	// than geocoding or air quality.
	DefaultTimeout = 30 * time.Second

	// drivingProfile is the only ORS profile the planner uses.
	drivingProfile = "driving-car"
)

// HTTPDoer is the transport contract, satisfied by both *http.Client and
// the resilient client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig configures the OpenRouteService client. Only APIKey is
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

// Client calls the ORS directions API.
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

// preferenceFor maps the optimization vocabulary onto ORS preferences.
// ORS has no fewer-maneuvers objective; those requests fall back to the
// recommended preference.
func preferenceFor(opt routing.Optimization) string {
	if opt == routing.OptimizationShort {
		return "shortest"
	}
	return "recommended"
}

// provErr builds a routing.Error tagged with this provider.
func provErr(code, message string, sentinel error) *routing.Error {
	return &routing.Error{
		Provider: ProviderName,
		Code:     code,
		Message:  message,
		Err:      sentinel,
	}
}

// GetRoute computes a single driving route for the given endpoints and
// preference. The first route of the response wins; zero routes or an
// empty geometry map to routing.ErrNoRoute.
func (c *Client) GetRoute(ctx context.Context, req routing.RouteRequest) (*routing.Route, error) {
	optimization := req.Preference.Optimization
	if optimization == "" {
		optimization = routing.OptimizationBalanced
	}

	// Coordinates go out in GeoJSON [lon, lat] order.
	orsReq := orsRequest{
		Coordinates: [][]float64{
			{req.Origin.Lon, req.Origin.Lat},
			{req.Destination.Lon, req.Destination.Lat},
		},
		Preference: preferenceFor(optimization),
		Units:      "m",
		Geometry:   true,
	}
	if req.Preference.Avoid != "" {
		orsReq.Options = &orsOptions{AvoidFeatures: []string{req.Preference.Avoid}}
	}

	payload, err := json.Marshal(orsReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/directions/"+drivingProfile, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)

	c.logger.Debug().
		Str("preference", req.Preference.Name).
		Str("ors_preference", orsReq.Preference).
		Str("avoid", req.Preference.Avoid).
		Msg("requesting directions")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, provErr("REQUEST_FAILED", "routing provider did not respond", routing.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errorFor(resp.StatusCode, respBody)
	}

	var result orsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(result.Routes) == 0 {
		return nil, provErr("NO_ROUTE", "no routes returned for the given points", routing.ErrNoRoute)
	}

	best := result.Routes[0]
	route := &routing.Route{
		Geometry:        geo.DecodePolyline(best.Geometry),
		DistanceMeters:  best.Summary.Distance,
		DurationSeconds: best.Summary.Duration,
	}
	if len(route.Geometry) == 0 {
		return nil, provErr("EMPTY_GEOMETRY", "route is missing geometry", routing.ErrNoRoute)
	}

	c.logger.Debug().
		Str("preference", req.Preference.Name).
		Float64("distance_m", route.DistanceMeters).
		Float64("duration_s", route.DurationSeconds).
		Int("points", len(route.Geometry)).
		Msg("directions received")

	return route, nil
}

// errorFor maps a non-200 ORS response onto the routing error vocabulary.
// A 400 carrying the routable-point error code means the endpoints cannot
// be routed, which callers treat the same as no route at all.
func errorFor(statusCode int, body []byte) error {
	var orsErr orsErrorResponse
	if err := json.Unmarshal(body, &orsErr); err != nil || orsErr.Error.Message == "" {
		orsErr.Error.Message = fmt.Sprintf("routing provider returned status %d", statusCode)
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		return provErr("RATE_LIMIT", "routing provider rate limit hit", routing.ErrRateLimitExceeded)
	case http.StatusUnauthorized, http.StatusForbidden:
		return provErr("FORBIDDEN", "routing provider rejected the API key", routing.ErrProviderUnavailable)
	case http.StatusNotFound:
		return provErr("NO_ROUTE", "no route found between the given points", routing.ErrNoRoute)
	case http.StatusBadRequest:
		code := "BAD_REQUEST"
		if orsErr.Error.Code == orsErrorCodeNotFound {
			code = "NO_ROUTE"
		}
		return provErr(code, orsErr.Error.Message, routing.ErrNoRoute)
	}
	if statusCode >= 500 {
		return provErr(fmt.Sprintf("SERVER_%d", statusCode), "routing provider returned a server error", routing.ErrProviderUnavailable)
	}
	return provErr(fmt.Sprintf("HTTP_%d", statusCode), orsErr.Error.Message, routing.ErrProviderUnavailable)
}
