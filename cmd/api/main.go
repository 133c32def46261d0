// Package main provides the entrypoint for the AsthmaGuardian API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/asthmaguardian/asthmaguardian/internal/airquality"
	"github.com/asthmaguardian/asthmaguardian/internal/airquality/airnow"
	"github.com/asthmaguardian/asthmaguardian/internal/api"
	"github.com/asthmaguardian/asthmaguardian/internal/api/middleware"
	"github.com/asthmaguardian/asthmaguardian/internal/config"
	"github.com/asthmaguardian/asthmaguardian/internal/exposure"
	geocodegeoapify "github.com/asthmaguardian/asthmaguardian/internal/geocoding/geoapify"
	"github.com/asthmaguardian/asthmaguardian/internal/places"
	placegeoapify "github.com/asthmaguardian/asthmaguardian/internal/places/geoapify"
	"github.com/asthmaguardian/asthmaguardian/internal/places/googleplaces"
	"github.com/asthmaguardian/asthmaguardian/internal/planner"
	"github.com/asthmaguardian/asthmaguardian/internal/provider/resilience"
	"github.com/asthmaguardian/asthmaguardian/internal/routing"
	routegeoapify "github.com/asthmaguardian/asthmaguardian/internal/routing/geoapify"
	"github.com/asthmaguardian/asthmaguardian/internal/routing/openrouteservice"
	"github.com/asthmaguardian/asthmaguardian/internal/telemetry"
)

const serviceName = "asthmaguardian-api"

// Version and BuildTime are stamped by the build via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// .env is optional; deployed environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := newLogger(cfg)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server stopped")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, _ := zerolog.ParseLevel(cfg.Log.Level)
	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()
}

func run(cfg *config.Config, log zerolog.Logger) error {
	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Server.Env).
		Msg("starting AsthmaGuardian API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Server.Env,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("telemetry shutdown failed")
		}
	}()
	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("telemetry exporting to OTLP")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		return fmt.Errorf("initializing HTTP metrics: %w", err)
	}

	// Provider health registry, surfaced by /v1/ops/status.
	registry := resilience.NewRegistry()

	plannerService, err := buildPlanner(cfg, log, registry)
	if err != nil {
		return err
	}
	log.Info().Msg("planner service initialized")

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		RequireTLS:  cfg.Server.RequireTLS,
		Planner:     plannerService,
		Registry:    registry,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// buildPlanner wires the provider clients and domain services behind the
// planner facade. Provider selection follows cfg.Routing.Provider and
// cfg.Places.Provider.
func buildPlanner(cfg *config.Config, log zerolog.Logger, registry *resilience.Registry) (*planner.Service, error) {
	providerMetrics, err := resilience.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("initializing provider metrics: %w", err)
	}

	geocoder := geocodegeoapify.NewClient(geocodegeoapify.ClientConfig{
		APIKey:   cfg.Geoapify.APIKey,
		BaseURL:  cfg.Geoapify.BaseURL,
		Timeout:  time.Duration(cfg.Timeouts.Geocode) * time.Second,
		Registry: registry,
		Metrics:  providerMetrics,
		Logger:   log,
	})

	var routeProvider routing.Provider
	switch cfg.Routing.Provider {
	case config.RoutingProviderOpenRouteService:
		routeProvider = openrouteservice.NewClient(openrouteservice.ClientConfig{
			APIKey:   cfg.OpenRouteService.APIKey,
			BaseURL:  cfg.OpenRouteService.BaseURL,
			Timeout:  time.Duration(cfg.Timeouts.Route) * time.Second,
			Registry: registry,
			Metrics:  providerMetrics,
			Logger:   log,
		})
	default:
		routeProvider = routegeoapify.NewClient(routegeoapify.ClientConfig{
			APIKey:   cfg.Geoapify.APIKey,
			BaseURL:  cfg.Geoapify.BaseURL,
			Timeout:  time.Duration(cfg.Timeouts.Route) * time.Second,
			Registry: registry,
			Metrics:  providerMetrics,
			Logger:   log,
		})
	}
	log.Info().Str("provider", routeProvider.Name()).Msg("routing provider initialized")

	airNowClient := airnow.NewClient(airnow.ClientConfig{
		APIKey:          cfg.AirNow.APIKey,
		BaseURL:         cfg.AirNow.BaseURL,
		ObserveTimeout:  time.Duration(cfg.Timeouts.Observe) * time.Second,
		ForecastTimeout: time.Duration(cfg.Timeouts.Forecast) * time.Second,
		Registry:        registry,
		Metrics:         providerMetrics,
		Logger:          log,
	})

	var poiProvider places.Provider
	switch cfg.Places.Provider {
	case config.PlacesProviderGeoapify:
		poiProvider = placegeoapify.NewClient(placegeoapify.ClientConfig{
			APIKey:   cfg.Geoapify.APIKey,
			BaseURL:  cfg.Geoapify.BaseURL,
			Timeout:  time.Duration(cfg.Timeouts.Places) * time.Second,
			Registry: registry,
			Metrics:  providerMetrics,
			Logger:   log,
		})
	default:
		googleClient, err := googleplaces.NewClient(googleplaces.ClientConfig{
			APIKey:   cfg.Google.APIKey,
			Timeout:  time.Duration(cfg.Timeouts.Places) * time.Second,
			Registry: registry,
			Metrics:  providerMetrics,
			Logger:   log,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing Google Places client: %w", err)
		}
		poiProvider = googleClient
	}
	log.Info().Str("provider", poiProvider.Name()).Msg("places provider initialized")

	airQualityService := airquality.NewService(airquality.ServiceConfig{
		Forecaster:         airNowClient,
		Logger:             log,
		DefaultHorizonDays: cfg.Planner.LookAheadDays,
	})

	exposureService := exposure.NewService(exposure.ServiceConfig{
		Router:       routeProvider,
		Observer:     airNowClient,
		Logger:       log,
		SampleBudget: cfg.Planner.SampleBudget,
	})

	stopMatcher := places.NewMatcher(places.MatcherConfig{
		Provider: poiProvider,
		Logger:   log,
	})

	return planner.NewService(planner.ServiceConfig{
		Geocoder:   geocoder,
		TravelDays: airQualityService,
		Ranker:     exposureService,
		Stops:      stopMatcher,
		Logger:     log,
	}), nil
}
