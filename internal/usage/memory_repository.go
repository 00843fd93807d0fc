package usage

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository, intended
// for tests and dev mode.
type InMemoryRepository struct {
	mu     sync.RWMutex
	events []Event
	nextID int64
}

// NewInMemoryRepository creates a new in-memory usage repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

// Insert records a usage event.
func (r *InMemoryRepository) Insert(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = r.nextID
	r.nextID++
	r.events = append(r.events, event)
	return nil
}

// ListForFeature returns events for a feature, newest first.
func (r *InMemoryRepository) ListForFeature(_ context.Context, feature string) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Event
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Feature == feature {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}

// CountForFeature returns the number of events recorded for a feature.
func (r *InMemoryRepository) CountForFeature(_ context.Context, feature string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, e := range r.events {
		if e.Feature == feature {
			count++
		}
	}
	return count, nil
}
