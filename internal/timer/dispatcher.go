package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/snapwitch/snapwitch/internal/schedule"
)

// FireHandler receives the payload of a due registration. The platform may
// invoke it at any time; handlers must be self-contained.
type FireHandler func(ctx context.Context, action schedule.ActionType)

// DispatcherConfig holds configuration for creating a Dispatcher.
type DispatcherConfig struct {
	Store   Store
	Handler FireHandler
	Logger  zerolog.Logger

	// PollInterval is how often the store is checked for due
	// registrations. Default: 1 second.
	PollInterval time.Duration
}

// Dispatcher polls the store and delivers due registrations to the fire
// handler. A registration is deleted before its handler runs, so delivery is
// at most once per registration.
type Dispatcher struct {
	store        Store
	handler      FireHandler
	logger       zerolog.Logger
	pollInterval time.Duration
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = time.Second
	}
	return &Dispatcher{
		store:        cfg.Store,
		handler:      cfg.Handler,
		logger:       cfg.Logger,
		pollInterval: pollInterval,
	}
}

// Register upserts a registration by RequestID, satisfying Registrar.
func (d *Dispatcher) Register(ctx context.Context, reg schedule.Registration) error {
	if err := d.store.Put(ctx, reg); err != nil {
		return fmt.Errorf("%w: %s", schedule.ErrSchedulingFailed, err.Error())
	}
	d.logger.Debug().
		Int32("request_id", reg.RequestID).
		Int64("fire_at", reg.FireAt).
		Str("action", string(reg.Action)).
		Msg("timer registered")
	return nil
}

// Run polls until ctx is cancelled. Due registrations are dispatched in fire
// order, one at a time.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.dispatchDue(ctx)
		}
	}
}

// dispatchDue claims and delivers every registration due at this instant.
func (d *Dispatcher) dispatchDue(ctx context.Context) {
	due, err := d.store.DueBefore(ctx, time.Now().UnixMilli())
	if err != nil {
		d.logger.Error().Err(err).Msg("failed to query due timer registrations")
		return
	}

	for _, reg := range due {
		// Claim by deleting first: a crash between delete and handler
		// drops the fire rather than doubling it.
		if err := d.store.Delete(ctx, reg.RequestID); err != nil {
			d.logger.Error().Err(err).
				Int32("request_id", reg.RequestID).
				Msg("failed to claim due registration")
			continue
		}

		d.logger.Info().
			Int32("request_id", reg.RequestID).
			Str("action", string(reg.Action)).
			Int64("fire_at", reg.FireAt).
			Msg("timer fired")

		d.handler(ctx, reg.Action)
	}
}
