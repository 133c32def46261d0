// Package geoapify provides a client for the Geoapify Places API.
package geoapify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/asthmaguardian/asthmaguardian/internal/places"
	"github.com/asthmaguardian/asthmaguardian/internal/provider/resilience"
	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

const (
	// ProviderName is the identifier used in logs and the health registry.
	ProviderName = "geoapify-places"

	// DefaultBaseURL points at the hosted Geoapify API.
	DefaultBaseURL = "https://api.geoapify.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 20 * time.Second

	// DefaultSearchLimit is the maximum number of places requested per
	// query. Callers cap their result lists well below this; the margin
	// exists because ranking happens after the query.
	DefaultSearchLimit = 50
)

// categoryNames maps provider-neutral categories to the Geoapify taxonomy.
var categoryNames = map[places.Category]string{
	places.CategoryHealthcare: "healthcare",
	places.CategoryHospital:   "healthcare.hospital",
	places.CategoryClinic:     "healthcare.clinic_or_praxis",
	places.CategoryRestaurant: "catering.restaurant",
	places.CategoryFastFood:   "catering.fast_food",
	places.CategoryCafe:       "catering.cafe",
}

// HTTPDoer is the transport contract, satisfied by both *http.Client and
// the resilient client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig configures the Geoapify places client. Only APIKey is
// required; every other zero value gets a sensible default.
type ClientConfig struct {
	APIKey string

	// BaseURL overrides the hosted API endpoint, mainly for tests.
	BaseURL string

	// HTTPClient overrides the transport. When nil the client builds a
	// resilient transport with circuit breaker and retries.
	HTTPClient HTTPDoer

	Timeout time.Duration

	// SearchLimit caps the places requested per query (optional,
	// defaults to DefaultSearchLimit).
	SearchLimit int

	// Registry and Metrics feed the provider health surface (optional).
	Registry *resilience.Registry
	Metrics  *resilience.Metrics

	Logger zerolog.Logger
}

// Client calls the Geoapify places API.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  HTTPDoer
	searchLimit int
	logger      zerolog.Logger
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

	searchLimit := cfg.SearchLimit
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
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
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  httpClient,
		searchLimit: searchLimit,
		logger:      cfg.Logger,
	}
}

// Name implements places.Provider.
func (c *Client) Name() string {
	return ProviderName
}

// Wire types (Geoapify places GeoJSON response).

type placesResponse struct {
	Features []placeFeature `json:"features"`
}

type placeFeature struct {
	Properties placeProperties `json:"properties"`
}

type placeProperties struct {
	Name      string  `json:"name"`
	Formatted string  `json:"formatted"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

// SearchPlaces returns places of the given categories inside the bounding
// box. Nameless features are dropped; Geoapify carries no rating, so
// Rating stays 0.
func (c *Client) SearchPlaces(ctx context.Context, box geo.BoundingBox, categories []places.Category) ([]places.Place, error) {
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		if name, ok := categoryNames[category]; ok {
			names = append(names, name)
		}
	}

	query := url.Values{}
	query.Set("categories", strings.Join(names, ","))
	// rect corners are west,south then east,north in lon,lat order.
	query.Set("filter", fmt.Sprintf("rect:%v,%v,%v,%v", box.MinLon, box.MinLat, box.MaxLon, box.MaxLat))
	query.Set("limit", strconv.Itoa(c.searchLimit))
	query.Set("apiKey", c.apiKey)

	reqURL := fmt.Sprintf("%s/v2/places?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().
		Strs("categories", names).
		Msg("searching places via Geoapify")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &places.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "places provider did not respond",
			Err:      places.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &places.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("places provider returned status %d", resp.StatusCode),
			Err:      places.ErrProviderUnavailable,
		}
	}

	var result placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding places response: %w", err)
	}

	found := make([]places.Place, 0, len(result.Features))
	for _, feat := range result.Features {
		if feat.Properties.Name == "" {
			continue
		}
		found = append(found, places.Place{
			Name:       feat.Properties.Name,
			Coordinate: geo.Coordinate{Lat: feat.Properties.Lat, Lon: feat.Properties.Lon},
			Address:    feat.Properties.Formatted,
		})
	}

	c.logger.Debug().
		Int("places", len(found)).
		Msg("received places from Geoapify")

	return found, nil
}
