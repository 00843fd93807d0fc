// Package analytics provides the fire-and-forget analytics sink.
package analytics

import (
	"context"

	"github.com/rs/zerolog"
)

// Event names emitted by the scheduling core.
const (
	EventSetWithNoRepeat   = "setWithNoRepeat"
	EventSetWithRepeat     = "setWithRepeatOn"
	EventNotificationFired = "notificationFired"
)

// AttrSchedulerType is the attribute key carrying the scheduler feature name.
const AttrSchedulerType = "schedulerTypeSet"

// Sink records analytics events. Calls are fire-and-forget: implementations
// must never block the caller on delivery, and failures are swallowed.
type Sink interface {
	Log(ctx context.Context, event string, attrs map[string]string)
}

// LogSink writes analytics events to the structured log. Used when no
// external sink is configured.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a new logging sink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Log writes the event as a debug log line.
func (s *LogSink) Log(_ context.Context, event string, attrs map[string]string) {
	e := s.logger.Debug().Str("event", event)
	for k, v := range attrs {
		e = e.Str(k, v)
	}
	e.Msg("analytics event")
}
