// Package api provides the HTTP API for AsthmaGuardian.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/asthmaguardian/asthmaguardian/internal/api/handler"
	"github.com/asthmaguardian/asthmaguardian/internal/api/middleware"
	"github.com/asthmaguardian/asthmaguardian/internal/planner"
	"github.com/asthmaguardian/asthmaguardian/internal/provider/resilience"
)

// RouterConfig carries everything the router needs to wire handlers and
// middleware. Metrics may be nil, in which case no HTTP metrics are
// recorded.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	RequireTLS  bool
	Planner     *planner.Service
	Registry    *resilience.Registry
}

// NewRouter assembles the chi router: the global middleware chain, the ops
// endpoints, and the versioned planning API.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "asthmaguardian-api"
	}

	// Request ID first so every later stage can tag its output with it,
	// then tracing and metrics before logging so they observe the full
	// request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)
	tripHandler := handler.NewTripHandler(cfg.Planner)
	routeHandler := handler.NewRouteHandler(cfg.Planner)
	travelDayHandler := handler.NewTravelDayHandler(cfg.Planner)

	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Planning runs fan out to several providers per request, so they
		// get the strict limit.
		r.With(expensiveRateLimit, middleware.RequireJSON).Post("/trips:plan", tripHandler.PlanTrip)
		r.With(standardRateLimit).Get("/trips/latest", tripHandler.LatestPlan)

		r.With(expensiveRateLimit, middleware.RequireJSON).Post("/routes:rank", routeHandler.RankRoutes)

		r.With(standardRateLimit).Get("/travel-days", travelDayHandler.SuggestTravelDay)
	})

	return r
}
