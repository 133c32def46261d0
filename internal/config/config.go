// Package config loads application configuration from defaults, an
// optional config file, and GUARDIAN_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Provider selection values.
const (
	RoutingProviderGeoapify         = "geoapify"
	RoutingProviderOpenRouteService = "openrouteservice"

	PlacesProviderGoogle   = "google"
	PlacesProviderGeoapify = "geoapify"
)

// Config holds all application configuration.
type Config struct {
	Server           ServerConfig    `mapstructure:"server"`
	Log              LogConfig       `mapstructure:"log"`
	Geoapify         ProviderConfig  `mapstructure:"geoapify"`
	AirNow           ProviderConfig  `mapstructure:"airnow"`
	Google           ProviderConfig  `mapstructure:"google"`
	OpenRouteService ProviderConfig  `mapstructure:"openrouteservice"`
	Routing          RoutingConfig   `mapstructure:"routing"`
	Places           PlacesConfig    `mapstructure:"places"`
	Timeouts         TimeoutsConfig  `mapstructure:"timeouts"`
	Planner          PlannerConfig   `mapstructure:"planner"`
	Telemetry        TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Env          string `mapstructure:"env"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	RequireTLS   bool   `mapstructure:"require_tls"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ProviderConfig holds the credentials for one upstream provider. An empty
// BaseURL means the provider client's default endpoint.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type RoutingConfig struct {
	Provider string `mapstructure:"provider"`
}

type PlacesConfig struct {
	Provider string `mapstructure:"provider"`
}

// TimeoutsConfig holds per-adapter request timeouts in seconds.
type TimeoutsConfig struct {
	Geocode  int `mapstructure:"geocode"`
	Route    int `mapstructure:"route"`
	Observe  int `mapstructure:"observe"`
	Forecast int `mapstructure:"forecast"`
	Places   int `mapstructure:"places"`
}

type PlannerConfig struct {
	SampleBudget  int `mapstructure:"sample_budget"`
	LookAheadDays int `mapstructure:"look_ahead_days"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.require_tls", false)
	v.SetDefault("log.level", "info")
	for _, provider := range []string{"geoapify", "airnow", "google", "openrouteservice"} {
		// Register the keys so environment overrides reach Unmarshal.
		v.SetDefault(provider+".api_key", "")
		v.SetDefault(provider+".base_url", "")
	}
	v.SetDefault("routing.provider", RoutingProviderGeoapify)
	v.SetDefault("places.provider", PlacesProviderGoogle)
	v.SetDefault("timeouts.geocode", 20)
	v.SetDefault("timeouts.route", 30)
	v.SetDefault("timeouts.observe", 20)
	v.SetDefault("timeouts.forecast", 20)
	v.SetDefault("timeouts.places", 20)
	v.SetDefault("planner.sample_budget", 10)
	v.SetDefault("planner.look_ahead_days", 3)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GUARDIAN_GEOAPIFY_API_KEY → geoapify.api_key
	v.SetEnvPrefix("GUARDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level %q is not a valid level", c.Log.Level))
	}

	if c.Geoapify.APIKey == "" {
		errs = append(errs, "geoapify.api_key is required")
	}
	if c.AirNow.APIKey == "" {
		errs = append(errs, "airnow.api_key is required")
	}

	switch c.Routing.Provider {
	case RoutingProviderGeoapify:
	case RoutingProviderOpenRouteService:
		if c.OpenRouteService.APIKey == "" {
			errs = append(errs, "openrouteservice.api_key is required when routing.provider is openrouteservice")
		}
	default:
		errs = append(errs, fmt.Sprintf("routing.provider must be %q or %q, got %q",
			RoutingProviderGeoapify, RoutingProviderOpenRouteService, c.Routing.Provider))
	}

	switch c.Places.Provider {
	case PlacesProviderGeoapify:
	case PlacesProviderGoogle:
		if c.Google.APIKey == "" {
			errs = append(errs, "google.api_key is required when places.provider is google")
		}
	default:
		errs = append(errs, fmt.Sprintf("places.provider must be %q or %q, got %q",
			PlacesProviderGoogle, PlacesProviderGeoapify, c.Places.Provider))
	}

	for _, timeout := range []struct {
		key     string
		seconds int
	}{
		{"timeouts.geocode", c.Timeouts.Geocode},
		{"timeouts.route", c.Timeouts.Route},
		{"timeouts.observe", c.Timeouts.Observe},
		{"timeouts.forecast", c.Timeouts.Forecast},
		{"timeouts.places", c.Timeouts.Places},
	} {
		if timeout.seconds <= 0 {
			errs = append(errs, timeout.key+" must be positive")
		}
	}

	if c.Planner.SampleBudget <= 0 {
		errs = append(errs, "planner.sample_budget must be positive")
	}
	if c.Planner.LookAheadDays <= 0 {
		errs = append(errs, "planner.look_ahead_days must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
