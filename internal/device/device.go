// Package device provides the platform toggle collaborator: the component
// that actually flips (or surfaces the settings for) a radio.
package device

import (
	"context"

	"github.com/rs/zerolog"
)

// Toggler flips a connectivity radio. Failures are non-fatal to the caller
// and only logged.
type Toggler interface {
	ToggleWifi(ctx context.Context) error
	ToggleBluetooth(ctx context.Context) error
	ToggleData(ctx context.Context) error
}

// LogToggler is a Toggler that only logs. Used in dev mode and tests, and as
// the fallback when no device agent is configured.
type LogToggler struct {
	logger zerolog.Logger
}

// NewLogToggler creates a new logging toggler.
func NewLogToggler(logger zerolog.Logger) *LogToggler {
	return &LogToggler{logger: logger}
}

// ToggleWifi logs the toggle request.
func (t *LogToggler) ToggleWifi(context.Context) error {
	t.logger.Info().Str("radio", "wifi").Msg("toggle requested")
	return nil
}

// ToggleBluetooth logs the toggle request.
func (t *LogToggler) ToggleBluetooth(context.Context) error {
	t.logger.Info().Str("radio", "bluetooth").Msg("toggle requested")
	return nil
}

// ToggleData logs the toggle request.
func (t *LogToggler) ToggleData(context.Context) error {
	t.logger.Info().Str("radio", "data").Msg("toggle requested")
	return nil
}
