package usage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL usage repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert records a usage event.
func (r *PostgresRepository) Insert(ctx context.Context, event Event) error {
	query := `
		INSERT INTO feature_usage (feature, recorded_at)
		VALUES ($1, $2)
	`
	_, err := r.pool.Exec(ctx, query, event.Feature, event.Timestamp)
	return err
}

// ListForFeature returns events for a feature, newest first.
func (r *PostgresRepository) ListForFeature(ctx context.Context, feature string) ([]Event, error) {
	query := `
		SELECT id, feature, recorded_at
		FROM feature_usage
		WHERE feature = $1
		ORDER BY recorded_at DESC
	`
	rows, err := r.pool.Query(ctx, query, feature)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Feature, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountForFeature returns the number of events recorded for a feature.
func (r *PostgresRepository) CountForFeature(ctx context.Context, feature string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feature_usage WHERE feature = $1`, feature).Scan(&count)
	return count, err
}
