package notification

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository. The mutex
// is the read-modify-write critical section around the stored list.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []Record
}

// NewInMemoryRepository creates a new in-memory notification repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Append adds a record to the stored list.
func (r *InMemoryRepository) Append(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

// List returns all stored records, newest first.
func (r *InMemoryRepository) List(_ context.Context) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, 0, len(r.records))
	for i := len(r.records) - 1; i >= 0; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

// DeleteByTime removes every record whose Time equals timeMillis.
func (r *InMemoryRepository) DeleteByTime(_ context.Context, timeMillis int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.Time != timeMillis {
			kept = append(kept, rec)
		}
	}
	r.records = kept
	return nil
}

// Clear removes all stored records.
func (r *InMemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	return nil
}
