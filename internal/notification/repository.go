package notification

import "context"

// Repository defines the interface for notification record storage.
// Implementations must serialize concurrent mutations: an append racing a
// delete on the stored list must not lose either update.
type Repository interface {
	// Append adds a record to the stored list.
	Append(ctx context.Context, rec Record) error

	// List returns all stored records, newest first.
	List(ctx context.Context) ([]Record, error)

	// DeleteByTime removes every record whose Time equals timeMillis.
	DeleteByTime(ctx context.Context, timeMillis int64) error

	// Clear removes all stored records.
	Clear(ctx context.Context) error
}
