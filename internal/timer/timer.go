// Package timer provides durable timer registrations with at-most-once
// dispatch. Registrations are keyed by a request identifier; registering with
// an existing identifier overwrites the pending entry.
package timer

import (
	"context"
	"errors"

	"github.com/snapwitch/snapwitch/internal/schedule"
)

// ErrRegistrationNotFound is returned when a registration does not exist.
var ErrRegistrationNotFound = errors.New("timer registration not found")

// Store persists timer registrations across restarts.
type Store interface {
	// Put upserts a registration by RequestID.
	Put(ctx context.Context, reg schedule.Registration) error

	// Get retrieves a registration by request identifier.
	// Returns ErrRegistrationNotFound if absent.
	Get(ctx context.Context, requestID int32) (*schedule.Registration, error)

	// List returns all pending registrations ordered by fire time.
	List(ctx context.Context) ([]schedule.Registration, error)

	// DueBefore returns registrations with FireAt <= cutoff, ordered by
	// fire time.
	DueBefore(ctx context.Context, cutoffMillis int64) ([]schedule.Registration, error)

	// Delete removes a registration. Deleting an absent registration is
	// not an error.
	Delete(ctx context.Context, requestID int32) error
}
