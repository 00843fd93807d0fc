// Package main provides the entrypoint for the SnapWitch daemon.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/snapwitch/snapwitch/internal/analytics"
	"github.com/snapwitch/snapwitch/internal/api"
	"github.com/snapwitch/snapwitch/internal/api/middleware"
	"github.com/snapwitch/snapwitch/internal/auth"
	"github.com/snapwitch/snapwitch/internal/connectivity"
	"github.com/snapwitch/snapwitch/internal/database"
	"github.com/snapwitch/snapwitch/internal/device"
	"github.com/snapwitch/snapwitch/internal/notification"
	"github.com/snapwitch/snapwitch/internal/schedule"
	"github.com/snapwitch/snapwitch/internal/telemetry"
	"github.com/snapwitch/snapwitch/internal/timer"
	"github.com/snapwitch/snapwitch/internal/usage"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "snapwitchd"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SnapWitch daemon")

	port := os.Getenv("SNAPWITCH_PORT")
	if port == "" {
		port = "8080"
	}

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := telemetry.ConfigFromEnv(serviceName, Version)
	tp, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryCfg.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Storage: Postgres when configured, in-memory for local development.
	var (
		pool             *pgxpool.Pool
		timerStore       timer.Store
		notificationRepo notification.Repository
		usageRepo        usage.Repository
	)
	if os.Getenv("SNAPWITCH_DB_HOST") != "" {
		dbConfig := database.ConfigFromEnv()
		pool, err = database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure database schema")
		}
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")

		timerStore = timer.NewPostgresStore(pool)
		notificationRepo = notification.NewPostgresRepository(pool)
		usageRepo = usage.NewPostgresRepository(pool)
	} else {
		log.Warn().Msg("SNAPWITCH_DB_HOST not set - using in-memory storage")
		timerStore = timer.NewInMemoryStore()
		notificationRepo = notification.NewInMemoryRepository()
		usageRepo = usage.NewInMemoryRepository()
	}

	// Notification service
	notifications := notification.NewService(notification.ServiceConfig{
		Repository: notificationRepo,
		Logger:     log,
	})

	// Analytics: Pub/Sub when configured, log sink otherwise.
	var sink analytics.Sink
	if projectID := os.Getenv("SNAPWITCH_PUBSUB_PROJECT"); projectID != "" {
		topic := os.Getenv("SNAPWITCH_PUBSUB_TOPIC")
		if topic == "" {
			topic = "snapwitch-analytics"
		}
		pubsubSink, err := analytics.NewPubSubSink(ctx, analytics.PubSubSinkConfig{
			ProjectID: projectID,
			TopicName: topic,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize pubsub analytics sink")
		}
		defer func() {
			if err := pubsubSink.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close pubsub analytics sink")
			}
		}()
		sink = pubsubSink
		log.Info().Str("project", projectID).Str("topic", topic).Msg("pubsub analytics sink initialized")
	} else {
		sink = analytics.NewLogSink(log)
	}

	// Device toggler: HTTP agent when configured, log-only otherwise.
	var toggler device.Toggler
	if agentURL := os.Getenv("SNAPWITCH_AGENT_URL"); agentURL != "" {
		toggler = device.NewAgentClient(device.AgentClientConfig{BaseURL: agentURL})
		log.Info().Str("agent_url", agentURL).Msg("device agent client initialized")
	} else {
		log.Warn().Msg("SNAPWITCH_AGENT_URL not set - toggles are log-only")
		toggler = device.NewLogToggler(log)
	}

	// Scheduling core
	coordinator := schedule.NewCoordinator(schedule.CoordinatorConfig{
		Resolver:      schedule.NewResolver(),
		Notifications: notifications,
		Toggler:       toggler,
		Analytics:     sink,
		Usage:         usageRepo,
		Logger:        log,
	})
	dispatcher := timer.NewDispatcher(timer.DispatcherConfig{
		Store:   timerStore,
		Handler: coordinator.HandleFire,
		Logger:  log,
	})
	coordinator.SetRegistrar(dispatcher)

	// Connectivity status notifier
	broadcaster := connectivity.NewBroadcaster()
	notifier := connectivity.NewNotifier(connectivity.NotifierConfig{
		Observer:      broadcaster,
		Notifications: notifications,
		Logger:        log,
	})

	// Optional bearer auth
	var tokens *auth.TokenService
	if signingKey := os.Getenv("SNAPWITCH_JWT_SIGNING_KEY"); signingKey != "" {
		tokens = auth.NewTokenService(auth.TokenConfig{SigningKey: signingKey})
		log.Info().Msg("bearer auth enabled")
	} else {
		log.Warn().Msg("SNAPWITCH_JWT_SIGNING_KEY not set - API auth disabled")
	}

	// Background loops
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go func() {
		if err := dispatcher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("dispatcher stopped")
		}
	}()
	go func() {
		if err := notifier.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("status notifier stopped")
		}
	}()

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:       Version,
		BuildTime:     BuildTime,
		Logger:        log,
		Metrics:       metrics,
		Coordinator:   coordinator,
		Notifications: notifications,
		Notifier:      notifier,
		Broadcaster:   broadcaster,
		Usage:         usageRepo,
		Analytics:     sink,
		Tokens:        tokens,
		Pool:          pool,
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancelRun()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
