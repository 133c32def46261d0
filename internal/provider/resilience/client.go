// Package resilience provides the resilient HTTP client used for outbound
// provider calls: circuit breaker, bounded exponential retry, per-request
// timeouts, and provider health bookkeeping.
package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a request.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ServerError marks an HTTP 5xx so it can flow through the breaker and
// retry machinery as a failure.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// Client defaults, applied by NewClient for zero-valued config fields.
const (
	defaultTimeout         = 10 * time.Second
	defaultMaxRetries      = 3
	defaultInitialInterval = 100 * time.Millisecond
	defaultMaxInterval     = 5 * time.Second
)

// ClientConfig tunes one resilient client. Zero values fall back to the
// package defaults above.
type ClientConfig struct {
	// Name identifies this client for breaker naming and health tracking.
	Name string

	// Timeout bounds each individual HTTP call.
	Timeout time.Duration

	// MaxRetries caps retry attempts after the first call.
	MaxRetries uint64

	// DisableRetries turns retrying off entirely. The zero MaxRetries means
	// "use the default", so paths that tolerate absence (AQI observation)
	// set this instead.
	DisableRetries bool

	// InitialInterval and MaxInterval bound the exponential backoff.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// CircuitBreaker overrides DefaultCircuitBreakerConfig when set.
	CircuitBreaker *CircuitBreakerConfig

	// Registry receives health updates for this client (optional).
	Registry *Registry

	// Metrics receives per-exchange request metrics (optional).
	Metrics *Metrics
}

// DefaultClientConfig is the baseline every provider client starts from.
func DefaultClientConfig(name string) ClientConfig {
	cbConfig := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         defaultTimeout,
		MaxRetries:      defaultMaxRetries,
		InitialInterval: defaultInitialInterval,
		MaxInterval:     defaultMaxInterval,
		CircuitBreaker:  &cbConfig,
	}
}

// Client wraps http.Client with a circuit breaker, exponential-backoff
// retries, and health reporting.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	config         ClientConfig
	registry       *Registry
	metrics        *Metrics
}

// NewClient creates a new resilient HTTP client. When cfg.Registry is set
// the client registers itself under cfg.Name and reports every outcome.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = defaultInitialInterval
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = defaultMaxInterval
	}
	if cfg.CircuitBreaker == nil {
		cb := DefaultCircuitBreakerConfig(cfg.Name)
		cfg.CircuitBreaker = &cb
	}

	c := &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: NewCircuitBreaker[*http.Response](*cfg.CircuitBreaker), //nolint:bodyclose // type param, not response
		config:         cfg,
		registry:       cfg.Registry,
		metrics:        cfg.Metrics,
	}

	if c.registry != nil {
		c.registry.Register(cfg.Name, c)
	}

	return c
}

// Do executes an HTTP request with circuit breaker protection and retry
// logic. Transient failures (5xx, network errors) are retried with
// exponential backoff; the request fails fast with ErrCircuitOpen while the
// breaker is open.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext is Do with an explicit context governing the whole retry
// schedule, not just the individual calls.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries bounded by WithMaxRetries, not time

	retries := c.config.MaxRetries
	if c.config.DisableRetries {
		retries = 0
	}
	schedule := backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx)

	var lastResp *http.Response

	attempt := func() error {
		// 5xx responses are surfaced as errors so they count against the
		// circuit breaker.
		resp, err := c.circuitBreaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, doErr := c.httpClient.Do(req.Clone(ctx))
			if doErr != nil {
				return nil, doErr
			}
			if r.StatusCode >= 500 {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}

		lastResp = resp
		return nil
	}

	if err := backoff.Retry(attempt, schedule); err != nil {
		if lastResp != nil {
			// 5xx that exhausted retries: hand the response to the caller,
			// but count it as a provider failure.
			c.recordFailure(start, &ServerError{StatusCode: lastResp.StatusCode})
			return lastResp, nil
		}
		c.recordFailure(start, err)
		return nil, err
	}

	c.recordSuccess(start)
	return lastResp, nil
}

func (c *Client) recordSuccess(start time.Time) {
	if c.registry != nil {
		c.registry.RecordSuccess(c.config.Name)
	}
	if c.metrics != nil {
		c.metrics.Record(c.config.Name, time.Since(start), nil)
	}
}

func (c *Client) recordFailure(start time.Time, err error) {
	if c.registry != nil {
		c.registry.RecordFailure(c.config.Name, err)
	}
	if c.metrics != nil {
		c.metrics.Record(c.config.Name, time.Since(start), err)
	}
}

// CircuitBreakerState returns the breaker's current state.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.circuitBreaker.State()
}

// CircuitBreakerCounts returns the breaker's current counts.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.circuitBreaker.Counts()
}
