package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/snapwitch/snapwitch/internal/analytics"
	"github.com/snapwitch/snapwitch/internal/device"
	"github.com/snapwitch/snapwitch/internal/notification"
	"github.com/snapwitch/snapwitch/internal/usage"
)

// DayResult reports the outcome of registering one weekday of a repeating
// action. Partial failure is reported per day rather than atomically; a
// caller may retry individual days.
type DayResult struct {
	Weekday   time.Weekday
	FireTime  int64
	RequestID int32
	Err       error
}

// CoordinatorConfig holds configuration for creating a Coordinator.
type CoordinatorConfig struct {
	Registrar     Registrar
	Resolver      *Resolver
	Notifications *notification.Service
	Toggler       device.Toggler
	Analytics     analytics.Sink
	Usage         usage.Repository
	Logger        zerolog.Logger

	// Now is the clock used to stamp records. Default: time.Now.
	Now func() time.Time
}

// Coordinator orchestrates timer registration for one-shot and repeating
// actions and handles the fire callback.
type Coordinator struct {
	registrar     Registrar
	resolver      *Resolver
	notifications *notification.Service
	toggler       device.Toggler
	analytics     analytics.Sink
	usage         usage.Repository
	logger        zerolog.Logger
	now           func() time.Time
}

// NewCoordinator creates a new Coordinator.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = NewResolver()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		registrar:     cfg.Registrar,
		resolver:      resolver,
		notifications: cfg.Notifications,
		toggler:       cfg.Toggler,
		analytics:     cfg.Analytics,
		usage:         cfg.Usage,
		logger:        cfg.Logger,
		now:           now,
	}
}

// SetRegistrar installs the timer registrar. The registrar's fire handler
// usually points back at this coordinator, so it cannot be passed at
// construction time.
func (c *Coordinator) SetRegistrar(r Registrar) {
	c.registrar = r
}

// Resolver returns the coordinator's fire-time resolver.
func (c *Coordinator) Resolver() *Resolver {
	return c.resolver
}

// ScheduleOnce registers the start and end fire times of a one-shot action.
// Both entries share the request identifier derived from the action type, so
// rescheduling the same action overwrites its pending timers instead of
// stacking duplicates. No notification is written here; the caller decides.
func (c *Coordinator) ScheduleOnce(ctx context.Context, action ActionType, startTime, endTime int64) error {
	requestID := RequestIDForAction(action)

	if err := c.registrar.Register(ctx, Registration{
		RequestID: requestID,
		FireAt:    startTime,
		Action:    action,
	}); err != nil {
		return fmt.Errorf("registering start time: %w", err)
	}

	if err := c.registrar.Register(ctx, Registration{
		RequestID: requestID,
		FireAt:    endTime,
		Action:    action,
	}); err != nil {
		return fmt.Errorf("registering end time: %w", err)
	}

	c.logger.Info().
		Str("action", string(action)).
		Int64("start_time", startTime).
		Int64("end_time", endTime).
		Int32("request_id", requestID).
		Msg("one-shot action scheduled")
	return nil
}

// ScheduleRepeating resolves and registers one timer entry per requested
// weekday at hour:minute. Each entry's request identifier derives from its
// fire time, so re-registering the same day/time combination overwrites the
// pending entry. Results are reported per day.
func (c *Coordinator) ScheduleRepeating(ctx context.Context, action ActionType, days []string, hour, minute int) []DayResult {
	results := make([]DayResult, 0, len(days))

	for _, day := range days {
		weekday, err := ParseWeekday(day)
		if err != nil {
			results = append(results, DayResult{Err: err})
			continue
		}

		fireTime, err := c.resolver.ResolveNextWeekday(day, hour, minute)
		if err != nil {
			results = append(results, DayResult{Weekday: weekday, Err: err})
			continue
		}

		requestID := RequestIDForTime(fireTime)
		err = c.registrar.Register(ctx, Registration{
			RequestID: requestID,
			FireAt:    fireTime,
			Action:    action,
		})
		if err != nil {
			c.logger.Warn().Err(err).
				Str("action", string(action)).
				Str("weekday", day).
				Msg("repeat day registration failed")
		} else {
			c.logger.Info().
				Str("action", string(action)).
				Str("weekday", day).
				Int64("fire_time", fireTime).
				Int32("request_id", requestID).
				Msg("repeat occurrence scheduled")
		}

		results = append(results, DayResult{
			Weekday:   weekday,
			FireTime:  fireTime,
			RequestID: requestID,
			Err:       err,
		})
	}

	return results
}

// HandleFire is the timer callback. It relies only on the payload, never on
// in-memory state from registration time: the process may have restarted in
// between.
func (c *Coordinator) HandleFire(ctx context.Context, action ActionType) {
	if action.IsNotify() {
		c.handleNotifyFire(ctx, action)
		return
	}

	var err error
	switch action {
	case ToggleWifi:
		err = c.toggler.ToggleWifi(ctx)
	case ToggleBluetooth:
		err = c.toggler.ToggleBluetooth(ctx)
	case ToggleData:
		err = c.toggler.ToggleData(ctx)
	default:
		c.logger.Warn().Str("action", string(action)).Msg("fired with unknown action type")
		return
	}
	if err != nil {
		c.logger.Error().Err(err).Str("action", string(action)).Msg("platform toggle failed")
	}
	c.recordUsage(ctx, action)
}

// handleNotifyFire appends the reminder record and emits the analytics event.
func (c *Coordinator) handleNotifyFire(ctx context.Context, action ActionType) {
	rec := notification.Record{
		Title:   action.Feature() + " Scheduler",
		Message: "Scheduler time due! adjust status now",
		Time:    c.now().UnixMilli(),
		Icon:    notification.IconSuccess,
	}
	if err := c.notifications.Append(ctx, rec); err != nil {
		c.logger.Warn().Err(err).Str("action", string(action)).Msg("failed to record fire notification")
	}

	if c.analytics != nil {
		c.analytics.Log(ctx, analytics.EventNotificationFired, map[string]string{
			analytics.AttrSchedulerType: action.Feature(),
		})
	}
	c.recordUsage(ctx, action)
}

// recordUsage logs one feature-usage event. Best effort.
func (c *Coordinator) recordUsage(ctx context.Context, action ActionType) {
	if c.usage == nil {
		return
	}
	err := c.usage.Insert(ctx, usage.Event{
		Feature:   action.Feature(),
		Timestamp: c.now(),
	})
	if err != nil {
		c.logger.Debug().Err(err).Str("action", string(action)).Msg("failed to record feature usage")
	}
}
