// Package notification provides persisted user-visible notification records
// with a reactive list stream.
package notification

import (
	"errors"
	"time"
)

// Repository errors.
var (
	// ErrPersistenceFailed wraps storage failures. Callers treat these as
	// best-effort: log, surface to the user, never retry automatically.
	ErrPersistenceFailed = errors.New("notification persistence failed")
)

// Icon tags select the presentation glyph for a record. The string values are
// part of the stored format.
const (
	IconWarning = "warning"
	IconTurnOn  = "turn On"
	IconTurnOff = "turn Off"
	IconSuccess = "success"
	IconDefault = "default"
)

// Record is a user-visible message describing a past or upcoming event. Time
// doubles as the deletion key: removal matches exact equality of Time.
type Record struct {
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Time       int64    `json:"time"` // epoch milliseconds
	Icon       string   `json:"icon,omitempty"`
	RepeatDays []string `json:"repeatDays,omitempty"`
}

// At returns the record time as a time.Time.
func (r Record) At() time.Time {
	return time.UnixMilli(r.Time)
}
