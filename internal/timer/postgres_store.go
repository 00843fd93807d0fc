package timer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapwitch/snapwitch/internal/schedule"
)

// PostgresStore is a PostgreSQL implementation of Store. Registrations survive
// process restarts, which is what makes dispatch restart-safe.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL timer store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Put upserts a registration by RequestID.
func (s *PostgresStore) Put(ctx context.Context, reg schedule.Registration) error {
	query := `
		INSERT INTO timer_registrations (request_id, fire_at, action)
		VALUES ($1, $2, $3)
		ON CONFLICT (request_id) DO UPDATE
		SET fire_at = EXCLUDED.fire_at, action = EXCLUDED.action
	`
	_, err := s.pool.Exec(ctx, query, reg.RequestID, reg.FireAt, string(reg.Action))
	return err
}

// Get retrieves a registration by request identifier.
func (s *PostgresStore) Get(ctx context.Context, requestID int32) (*schedule.Registration, error) {
	query := `
		SELECT request_id, fire_at, action
		FROM timer_registrations
		WHERE request_id = $1
	`
	var reg schedule.Registration
	var action string
	err := s.pool.QueryRow(ctx, query, requestID).Scan(&reg.RequestID, &reg.FireAt, &action)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	reg.Action = schedule.ActionType(action)
	return &reg, nil
}

// List returns all pending registrations ordered by fire time.
func (s *PostgresStore) List(ctx context.Context) ([]schedule.Registration, error) {
	query := `
		SELECT request_id, fire_at, action
		FROM timer_registrations
		ORDER BY fire_at
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRegistrations(rows)
}

// DueBefore returns registrations with FireAt <= cutoff, ordered by fire time.
func (s *PostgresStore) DueBefore(ctx context.Context, cutoffMillis int64) ([]schedule.Registration, error) {
	query := `
		SELECT request_id, fire_at, action
		FROM timer_registrations
		WHERE fire_at <= $1
		ORDER BY fire_at
	`
	rows, err := s.pool.Query(ctx, query, cutoffMillis)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRegistrations(rows)
}

// Delete removes a registration.
func (s *PostgresStore) Delete(ctx context.Context, requestID int32) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM timer_registrations WHERE request_id = $1`, requestID)
	return err
}

func scanRegistrations(rows pgx.Rows) ([]schedule.Registration, error) {
	var out []schedule.Registration
	for rows.Next() {
		var reg schedule.Registration
		var action string
		if err := rows.Scan(&reg.RequestID, &reg.FireAt, &action); err != nil {
			return nil, err
		}
		reg.Action = schedule.ActionType(action)
		out = append(out, reg)
	}
	return out, rows.Err()
}
