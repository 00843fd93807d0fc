// Package usage tracks scheduler feature usage: one event per time a feature
// fires or is configured, queryable per feature for the statistics surface.
package usage

import (
	"context"
	"time"
)

// Event is one recorded use of a scheduler feature.
type Event struct {
	ID        int64
	Feature   string
	Timestamp time.Time
}

// Repository defines the interface for usage event storage.
type Repository interface {
	// Insert records a usage event.
	Insert(ctx context.Context, event Event) error

	// ListForFeature returns events for a feature, newest first.
	ListForFeature(ctx context.Context, feature string) ([]Event, error)

	// CountForFeature returns the number of events recorded for a feature.
	CountForFeature(ctx context.Context, feature string) (int, error)
}
