// Package models defines the API request and response shapes.
package models

// ScheduleOnceRequest creates a one-shot schedule. Start and end are wall
// clock times resolved to the next future instant.
type ScheduleOnceRequest struct {
	Action      string `json:"action"`
	StartHour   int    `json:"startHour"`
	StartMinute int    `json:"startMinute"`
	EndHour     int    `json:"endHour"`
	EndMinute   int    `json:"endMinute"`
}

// ScheduleOnceResponse reports the resolved fire times of a one-shot schedule.
type ScheduleOnceResponse struct {
	Action    string `json:"action"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}

// ScheduleRepeatRequest creates a weekly repeating schedule.
type ScheduleRepeatRequest struct {
	Action string   `json:"action"`
	Days   []string `json:"days"`
	Hour   int      `json:"hour"`
	Minute int      `json:"minute"`
}

// RepeatDayResult reports the registration outcome for one weekday.
type RepeatDayResult struct {
	Day       string `json:"day"`
	FireTime  int64  `json:"fireTime,omitempty"`
	RequestID int32  `json:"requestId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ScheduleRepeatResponse reports per-day registration outcomes.
type ScheduleRepeatResponse struct {
	Action  string            `json:"action"`
	Results []RepeatDayResult `json:"results"`
}

// StatusResponse is the current connectivity baseline.
type StatusResponse struct {
	NetworkAvailable bool `json:"networkAvailable"`
	WifiEnabled      bool `json:"isWifiEnabled"`
	BluetoothEnabled bool `json:"isBluetoothEnabled"`
}

// UsageEvent is one recorded feature use.
type UsageEvent struct {
	Time int64 `json:"time"`
}

// UsageResponse reports usage statistics for one feature.
type UsageResponse struct {
	Feature string       `json:"feature"`
	Count   int          `json:"count"`
	Events  []UsageEvent `json:"events"`
}
