// Package api provides the HTTP API for the SnapWitch daemon.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/snapwitch/snapwitch/internal/analytics"
	"github.com/snapwitch/snapwitch/internal/api/handler"
	"github.com/snapwitch/snapwitch/internal/api/middleware"
	"github.com/snapwitch/snapwitch/internal/auth"
	"github.com/snapwitch/snapwitch/internal/connectivity"
	"github.com/snapwitch/snapwitch/internal/notification"
	"github.com/snapwitch/snapwitch/internal/schedule"
	"github.com/snapwitch/snapwitch/internal/usage"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics

	Coordinator   *schedule.Coordinator
	Notifications *notification.Service
	Notifier      *connectivity.Notifier
	Broadcaster   *connectivity.Broadcaster
	Usage         usage.Repository
	Analytics     analytics.Sink

	// Tokens enables bearer auth on the /v1 surface when non-nil.
	Tokens *auth.TokenService

	// Pool backs the readiness check; nil when running on memory storage.
	Pool *pgxpool.Pool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Pool)
	scheduleHandler := handler.NewScheduleHandler(handler.ScheduleHandlerConfig{
		Coordinator:   cfg.Coordinator,
		Notifications: cfg.Notifications,
		Analytics:     cfg.Analytics,
		Logger:        cfg.Logger,
	})
	notificationHandler := handler.NewNotificationHandler(cfg.Notifications, cfg.Logger)
	statusHandler := handler.NewStatusHandler(cfg.Notifier, cfg.Broadcaster, cfg.Logger)
	usageHandler := handler.NewUsageHandler(cfg.Usage, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.Tokens)
	scheduleRateLimit := middleware.RateLimitByIP(middleware.ScheduleRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// Ops endpoints (public)
	r.Get("/healthz", opsHandler.HealthCheck)
	r.Get("/readyz", opsHandler.ReadinessCheck)

	r.Route("/v1", func(r chi.Router) {
		// Token minting sits outside bearer auth; the shared secret in the
		// body is the credential.
		if cfg.Tokens != nil {
			tokenHandler := handler.NewTokenHandler(cfg.Tokens, cfg.Logger)
			r.With(scheduleRateLimit).Post("/tokens", tokenHandler.Mint)
		}

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Route("/schedules", func(r chi.Router) {
				r.Use(scheduleRateLimit)
				r.Post("/", scheduleHandler.CreateOnce)
				r.Post("/repeat", scheduleHandler.CreateRepeat)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/", notificationHandler.List)
				r.Delete("/", notificationHandler.Clear)
				r.Delete("/{time}", notificationHandler.DeleteByTime)
			})

			r.Route("/status", func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/", statusHandler.Get)
				r.Post("/", statusHandler.PushStatus)
				r.Post("/network", statusHandler.PushNetwork)
			})

			r.With(standardRateLimit).Get("/usage/{feature}", usageHandler.Get)
		})
	})

	return r
}
