// Package schedule provides the connectivity-toggle scheduling core:
// fire-time resolution, timer registration with deduplication, and the
// fire-time callback handling.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// ActionType identifies what a scheduled timer entry does when it fires.
type ActionType string

// Supported action types. The Toggle* variants flip a radio directly; the
// Notify* variants surface a reminder notification instead.
const (
	ToggleWifi      ActionType = "TOGGLE_WIFI"
	ToggleBluetooth ActionType = "TOGGLE_BLUETOOTH"
	ToggleData      ActionType = "TOGGLE_DATA"
	NotifyWifi      ActionType = "TOGGLE_WIFI_NOTIFICATION"
	NotifyBluetooth ActionType = "TOGGLE_BLUETOOTH_NOTIFICATION"
	NotifyData      ActionType = "TOGGLE_DATA_NOTIFICATION"
)

// ParseActionType converts a wire string into an ActionType.
func ParseActionType(s string) (ActionType, error) {
	switch ActionType(s) {
	case ToggleWifi, ToggleBluetooth, ToggleData, NotifyWifi, NotifyBluetooth, NotifyData:
		return ActionType(s), nil
	}
	return "", fmt.Errorf("unknown action type %q", s)
}

// IsNotify reports whether the action surfaces a notification rather than
// toggling a radio directly.
func (a ActionType) IsNotify() bool {
	switch a {
	case NotifyWifi, NotifyBluetooth, NotifyData:
		return true
	}
	return false
}

// Feature returns the human-facing feature name for an action type,
// e.g. "Wifi" for both ToggleWifi and NotifyWifi.
func (a ActionType) Feature() string {
	switch a {
	case ToggleWifi, NotifyWifi:
		return "Wifi"
	case ToggleBluetooth, NotifyBluetooth:
		return "Bluetooth"
	case ToggleData, NotifyData:
		return "Network"
	}
	return "Unknown"
}

// Action represents one user-requested toggle. Start and end times are each
// scheduled independently. An Action is never mutated after creation;
// rescheduling registers new timer entries under the same derived request
// identifiers, overwriting the old ones.
type Action struct {
	ID         string
	Type       ActionType
	StartTime  int64 // epoch milliseconds
	EndTime    int64 // epoch milliseconds
	RepeatDays []time.Weekday
}

// Occurrence is one weekday instance of a repeating action, registered as an
// independent timer entry.
type Occurrence struct {
	Weekday   time.Weekday
	FireTime  int64 // epoch milliseconds
	RequestID int32
}

// weekdayNames maps lowercase day names to time.Weekday.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday converts a case-insensitive day name into a time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	d, ok := weekdayNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return d, nil
}
