package notification

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository. Each
// mutation is a single statement, so serialization falls out of the database
// rather than an in-process lock.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL notification repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Append adds a record to the stored list.
func (r *PostgresRepository) Append(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO notifications (title, message, time_ms, icon, repeat_days)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, rec.Title, rec.Message, rec.Time, rec.Icon, rec.RepeatDays)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPersistenceFailed, err.Error())
	}
	return nil
}

// List returns all stored records, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Record, error) {
	query := `
		SELECT title, message, time_ms, icon, repeat_days
		FROM notifications
		ORDER BY time_ms DESC, id DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPersistenceFailed, err.Error())
	}
	defer rows.Close()
	return scanRecords(rows)
}

// DeleteByTime removes every record whose Time equals timeMillis.
func (r *PostgresRepository) DeleteByTime(ctx context.Context, timeMillis int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE time_ms = $1`, timeMillis)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPersistenceFailed, err.Error())
	}
	return nil
}

// Clear removes all stored records.
func (r *PostgresRepository) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notifications`)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPersistenceFailed, err.Error())
	}
	return nil
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Title, &rec.Message, &rec.Time, &rec.Icon, &rec.RepeatDays); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrPersistenceFailed, err.Error())
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPersistenceFailed, err.Error())
	}
	return out, nil
}
