package notification

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Subscription is a handle on the reactive notification list. C re-emits the
// full current list after every mutation. Close releases the subscription;
// the stream never terminates on its own.
type Subscription struct {
	C <-chan []Record

	close func()
	once  sync.Once
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.close)
}

// ServiceConfig holds configuration for the notification service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
}

// Service provides serialized notification mutations plus a reactive list
// stream. All mutations on one Service instance are serialized, so a
// concurrent append and delete cannot lose an update.
type Service struct {
	repo   Repository
	logger zerolog.Logger

	mu     sync.Mutex // serializes mutations and snapshots
	subMu  sync.Mutex
	subs   map[int]chan []Record
	nextID int
}

// NewService creates a new notification service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
		subs:   make(map[int]chan []Record),
	}
}

// Append stores a record and re-emits the list to all subscribers.
func (s *Service) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Append(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("title", rec.Title).Msg("failed to append notification")
		return err
	}
	s.broadcast(ctx)
	return nil
}

// List returns all stored records, newest first.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

// DeleteByTime removes every record whose Time equals timeMillis and re-emits
// the list to all subscribers.
func (s *Service) DeleteByTime(ctx context.Context, timeMillis int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteByTime(ctx, timeMillis); err != nil {
		s.logger.Error().Err(err).Int64("time", timeMillis).Msg("failed to delete notification")
		return err
	}
	s.broadcast(ctx)
	return nil
}

// Clear removes all stored records and re-emits the (empty) list.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear notifications")
		return err
	}
	s.broadcast(ctx)
	return nil
}

// Watch subscribes to the notification list. The current list is delivered
// immediately, then the full list is re-emitted after every mutation. A slow
// subscriber sees the latest list; intermediate snapshots may be dropped.
func (s *Service) Watch(ctx context.Context) *Subscription {
	ch := make(chan []Record, 1)

	// Registration and the initial send happen under subMu so a concurrent
	// broadcast cannot slip a snapshot in between them.
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	if current, err := s.repo.List(ctx); err == nil {
		ch <- current
	}
	s.subMu.Unlock()

	return &Subscription{
		C: ch,
		close: func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		},
	}
}

// broadcast re-emits the current list to every subscriber. Callers hold s.mu.
func (s *Service) broadcast(ctx context.Context) {
	current, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to snapshot notifications for broadcast")
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		sendLatest(ch, current)
	}
}

// sendLatest delivers list to a capacity-1 subscriber channel, discarding a
// stale undelivered snapshot rather than blocking. The subscriber only ever
// drains the channel, so the loop terminates.
func sendLatest(ch chan []Record, list []Record) {
	for {
		select {
		case ch <- list:
			return
		case <-ch:
		}
	}
}
