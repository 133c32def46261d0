// Package airnow provides a client for the AirNow observation and forecast APIs.
package airnow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/asthmaguardian/asthmaguardian/internal/airquality"
	"github.com/asthmaguardian/asthmaguardian/internal/provider/resilience"
	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

const (
	// ProviderName is the identifier used in logs and the health registry.
	ProviderName = "airnow"

	// DefaultBaseURL points at the hosted AirNow API.
	DefaultBaseURL = "https://www.airnowapi.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 20 * time.Second

	// DefaultDistanceMiles is the search radius around the query point.
	DefaultDistanceMiles = 25
)

// HTTPDoer is the transport contract, satisfied by both *http.Client and
// the resilient client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig configures the AirNow client. Only APIKey is required;
// every other zero value gets a sensible default.
type ClientConfig struct {
	APIKey string

	// BaseURL overrides the hosted API endpoint, mainly for tests.
	BaseURL string

	// HTTPClient overrides the transport for both endpoints. When nil
	// the client builds a resilient transport per endpoint.
	HTTPClient HTTPDoer

	// ObserveTimeout and ForecastTimeout bound the two endpoint calls
	// independently.
	ObserveTimeout  time.Duration
	ForecastTimeout time.Duration

	// DistanceMiles is the search radius (optional, defaults to 25).
	DistanceMiles int

	// Registry and Metrics feed the provider health surface (optional).
	Registry *resilience.Registry
	Metrics  *resilience.Metrics

	Logger zerolog.Logger
}

// Client is an AirNow API client. It serves both current observations near
// a point and multi-day forecasts by postal code.
type Client struct {
	apiKey        string
	baseURL       string
	distanceMiles int
	obsClient     HTTPDoer
	fcClient      HTTPDoer
	logger        zerolog.Logger
}

// NewClient creates a new AirNow client. Observation and forecast use
// separate transports: an observation miss degrades to "no sample", so its
// transport does not retry, while the forecast call is on the critical path
// of travel-day selection and keeps the standard retry policy.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	obsTimeout := cfg.ObserveTimeout
	if obsTimeout == 0 {
		obsTimeout = DefaultTimeout
	}
	fcTimeout := cfg.ForecastTimeout
	if fcTimeout == 0 {
		fcTimeout = DefaultTimeout
	}

	distance := cfg.DistanceMiles
	if distance == 0 {
		distance = DefaultDistanceMiles
	}

	obsClient := cfg.HTTPClient
	fcClient := cfg.HTTPClient
	if cfg.HTTPClient == nil {
		obsCfg := resilience.DefaultClientConfig(ProviderName + "-observation")
		obsCfg.Timeout = obsTimeout
		obsCfg.DisableRetries = true
		obsCfg.Registry = cfg.Registry
		obsCfg.Metrics = cfg.Metrics
		obsClient = resilience.NewClient(obsCfg)

		fcCfg := resilience.DefaultClientConfig(ProviderName + "-forecast")
		fcCfg.Timeout = fcTimeout
		fcCfg.Registry = cfg.Registry
		fcCfg.Metrics = cfg.Metrics
		fcClient = resilience.NewClient(fcCfg)
	}

	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		distanceMiles: distance,
		obsClient:     obsClient,
		fcClient:      fcClient,
		logger:        cfg.Logger,
	}
}

// Name implements both airquality.Observer and airquality.Forecaster.
func (c *Client) Name() string {
	return ProviderName
}

// Wire types (AirNow JSON responses).

type observationRecord struct {
	AQI           int    `json:"AQI"`
	ParameterName string `json:"ParameterName"`
}

type forecastRecord struct {
	DateForecast  string       `json:"DateForecast"`
	DateIssue     string       `json:"DateIssue"`
	AQI           int          `json:"AQI"`
	Category      categoryInfo `json:"Category"`
	ParameterName string       `json:"ParameterName"`
}

type categoryInfo struct {
	Name string `json:"Name"`
}

type errorEnvelope struct {
	Message string `json:"Message"`
}

// ObservePollution returns the worst current index reported near the
// coordinate. Any failure, from transport errors to the provider's error
// envelope, reads as "no data"; observations are sampled in bulk along a
// route and a missing sample is an acceptable answer.
func (c *Client) ObservePollution(ctx context.Context, coord geo.Coordinate) (int, bool) {
	query := url.Values{}
	query.Set("format", "application/json")
	query.Set("latitude", fmt.Sprintf("%.4f", coord.Lat))
	query.Set("longitude", fmt.Sprintf("%.4f", coord.Lon))
	query.Set("distance", strconv.Itoa(c.distanceMiles))
	query.Set("API_KEY", c.apiKey)

	reqURL := fmt.Sprintf("%s/aq/observation/latLong/current?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return 0, false
	}

	resp, err := c.obsClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Float64("lat", coord.Lat).
			Float64("lon", coord.Lon).
			Err(err).
			Msg("pollution observation failed")
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, false
	}

	// The provider signals errors with a JSON object instead of the usual
	// array, which fails the array unmarshal and reads as "no data".
	var records []observationRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return 0, false
	}
	if len(records) == 0 {
		return 0, false
	}

	maxAQI := records[0].AQI
	for _, rec := range records[1:] {
		if rec.AQI > maxAQI {
			maxAQI = rec.AQI
		}
	}

	return maxAQI, true
}

// FetchForecast returns raw forecast entries for the postal code, one per
// pollutant per date. Entries with unparseable dates fall back to today.
func (c *Client) FetchForecast(ctx context.Context, zipCode string) ([]airquality.ForecastDay, error) {
	query := url.Values{}
	query.Set("format", "application/json")
	query.Set("zipCode", zipCode)
	query.Set("distance", strconv.Itoa(c.distanceMiles))
	query.Set("API_KEY", c.apiKey)

	reqURL := fmt.Sprintf("%s/aq/forecast/zipCode/?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().
		Str("zip", zipCode).
		Msg("fetching pollution forecast from AirNow")

	resp, err := c.fcClient.Do(req)
	if err != nil {
		return nil, &airquality.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "air quality provider did not respond",
			Err:      airquality.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &airquality.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("air quality provider returned status %d", resp.StatusCode),
			Err:      airquality.ErrProviderUnavailable,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var records []forecastRecord
	if err := json.Unmarshal(body, &records); err != nil {
		var envelope errorEnvelope
		if json.Unmarshal(body, &envelope) == nil && envelope.Message != "" {
			return nil, &airquality.Error{
				Provider: ProviderName,
				Code:     "NO_DATA",
				Message:  envelope.Message,
				Err:      airquality.ErrNoData,
			}
		}
		return nil, &airquality.Error{
			Provider: ProviderName,
			Code:     "MALFORMED_RESPONSE",
			Message:  "could not decode forecast response",
			Err:      airquality.ErrProviderUnavailable,
		}
	}

	if len(records) == 0 {
		return nil, &airquality.Error{
			Provider: ProviderName,
			Code:     "NO_DATA",
			Message:  fmt.Sprintf("no forecast data returned for ZIP %s", zipCode),
			Err:      airquality.ErrNoData,
		}
	}

	today := time.Now()
	entries := make([]airquality.ForecastDay, 0, len(records))
	for _, rec := range records {
		category := rec.Category.Name
		if category == "" {
			category = "Unknown"
		}
		pollutant := rec.ParameterName
		if pollutant == "" {
			pollutant = "Unknown"
		}
		entries = append(entries, airquality.ForecastDay{
			Date:      parseForecastDate(rec, today),
			AQI:       rec.AQI,
			Category:  category,
			Pollutant: pollutant,
		})
	}

	c.logger.Debug().
		Str("zip", zipCode).
		Int("entries", len(entries)).
		Msg("received pollution forecast")

	return entries, nil
}

// parseForecastDate extracts the calendar date of a forecast record. The
// provider pads dates with stray whitespace and occasionally appends a time
// part; unparseable dates fall back to today's date.
func parseForecastDate(rec forecastRecord, today time.Time) time.Time {
	raw := rec.DateForecast
	if raw == "" {
		raw = rec.DateIssue
	}
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "T"); i >= 0 {
		raw = raw[:i]
	}

	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return airquality.DateOnly(today)
	}
	return d
}
