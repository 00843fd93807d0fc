package timer

import (
	"context"
	"sort"
	"sync"

	"github.com/snapwitch/snapwitch/internal/schedule"
)

// InMemoryStore is an in-memory implementation of Store. Registrations do not
// survive a restart, so it is intended for tests and dev mode; production
// should use PostgresStore.
type InMemoryStore struct {
	mu   sync.RWMutex
	regs map[int32]schedule.Registration
}

// NewInMemoryStore creates a new in-memory timer store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{regs: make(map[int32]schedule.Registration)}
}

// Put upserts a registration by RequestID.
func (s *InMemoryStore) Put(_ context.Context, reg schedule.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[reg.RequestID] = reg
	return nil
}

// Get retrieves a registration by request identifier.
func (s *InMemoryStore) Get(_ context.Context, requestID int32) (*schedule.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.regs[requestID]
	if !ok {
		return nil, ErrRegistrationNotFound
	}
	cpy := reg
	return &cpy, nil
}

// List returns all pending registrations ordered by fire time.
func (s *InMemoryStore) List(_ context.Context) ([]schedule.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schedule.Registration, 0, len(s.regs))
	for _, reg := range s.regs {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt < out[j].FireAt })
	return out, nil
}

// DueBefore returns registrations with FireAt <= cutoff, ordered by fire time.
func (s *InMemoryStore) DueBefore(_ context.Context, cutoffMillis int64) ([]schedule.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schedule.Registration
	for _, reg := range s.regs {
		if reg.FireAt <= cutoffMillis {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt < out[j].FireAt })
	return out, nil
}

// Delete removes a registration.
func (s *InMemoryStore) Delete(_ context.Context, requestID int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.regs, requestID)
	return nil
}
