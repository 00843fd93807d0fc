// Package database provides PostgreSQL connection management.
package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds database connection configuration.
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ConfigFromEnv creates a Config from SNAPWITCH_DB_* environment variables.
func ConfigFromEnv() Config {
	port, _ := strconv.Atoi(getEnvOrDefault("SNAPWITCH_DB_PORT", "5432"))
	maxOpen, _ := strconv.Atoi(getEnvOrDefault("SNAPWITCH_DB_MAX_OPEN_CONNS", "10"))
	maxIdle, _ := strconv.Atoi(getEnvOrDefault("SNAPWITCH_DB_MAX_IDLE_CONNS", "5"))
	lifetime, _ := time.ParseDuration(getEnvOrDefault("SNAPWITCH_DB_CONN_MAX_LIFETIME", "5m"))

	return Config{
		Host:            getEnvOrDefault("SNAPWITCH_DB_HOST", "localhost"),
		Port:            port,
		User:            getEnvOrDefault("SNAPWITCH_DB_USER", "snapwitch"),
		Password:        getEnvOrDefault("SNAPWITCH_DB_PASSWORD", "localdev"),
		Database:        getEnvOrDefault("SNAPWITCH_DB_NAME", "snapwitch"),
		SSLMode:         getEnvOrDefault("SNAPWITCH_DB_SSL_MODE", "disable"),
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: lifetime,
	}
}

// ConnectionString returns the PostgreSQL connection string.
func (c Config) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Connect creates a new database connection pool.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns) //nolint:gosec // MaxOpenConns is bounded by config validation
	poolConfig.MinConns = int32(cfg.MaxIdleConns) //nolint:gosec // MaxIdleConns is bounded by config validation
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the tables the daemon needs if they do not exist yet.
// The schema is small enough that a migration tool would be overhead.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS timer_registrations (
			request_id INTEGER PRIMARY KEY,
			fire_at    BIGINT NOT NULL,
			action     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS timer_registrations_fire_at_idx
			ON timer_registrations (fire_at)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id          BIGSERIAL PRIMARY KEY,
			title       TEXT NOT NULL,
			message     TEXT NOT NULL,
			time_ms     BIGINT NOT NULL,
			icon        TEXT NOT NULL DEFAULT '',
			repeat_days TEXT[] NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS notifications_time_ms_idx
			ON notifications (time_ms)`,
		`CREATE TABLE IF NOT EXISTS feature_usage (
			id          BIGSERIAL PRIMARY KEY,
			feature     TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS feature_usage_feature_idx
			ON feature_usage (feature, recorded_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
