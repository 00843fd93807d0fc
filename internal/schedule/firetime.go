package schedule

import (
	"fmt"
	"hash/fnv"
	"math"
	"time"
)

// Resolver converts user-chosen wall-clock times into absolute future fire
// timestamps. The clock is injectable so tests can pin "now".
type Resolver struct {
	now func() time.Time
}

// NewResolver creates a Resolver using the real clock.
func NewResolver() *Resolver {
	return &Resolver{now: time.Now}
}

// NewResolverAt creates a Resolver with a custom clock.
func NewResolverAt(now func() time.Time) *Resolver {
	return &Resolver{now: now}
}

// ResolveOnceTime resolves hour:minute to "today at hour:minute", rolling
// forward one day when that instant is not strictly in the future. Out-of-range
// inputs are rejected rather than clamped.
func (r *Resolver) ResolveOnceTime(hour, minute int) (int64, error) {
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hour %d out of range [0,23]", hour)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("minute %d out of range [0,59]", minute)
	}

	now := r.now()
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at.UnixMilli(), nil
}

// ResolveNextWeekday resolves the fire time for one weekly repeat occurrence:
// the occurrence of targetDay strictly after the nearest one. Walking from
// today until the weekday matches and then skipping one full cycle means a
// repeat never fires in the week it was configured; a repeat set on a Monday
// for "monday" lands on the Monday of the following week.
func (r *Resolver) ResolveNextWeekday(targetDay string, hour, minute int) (int64, error) {
	day, err := ParseWeekday(targetDay)
	if err != nil {
		return 0, err
	}
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hour %d out of range [0,23]", hour)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("minute %d out of range [0,59]", minute)
	}

	now := r.now()
	d := now
	for d.Weekday() != day {
		d = d.AddDate(0, 0, 1)
	}
	d = d.AddDate(0, 0, 7)

	at := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, now.Location())
	return at.UnixMilli(), nil
}

// RequestIDForTime derives a timer request identifier from a fire time by
// truncating the millisecond timestamp modulo MaxInt32. Re-registering the
// same occurrence yields the same identifier, so the timer entry is
// overwritten instead of duplicated. Distinct timestamps sharing a residue
// collide; that risk is accepted as a best-effort deduplication scheme.
func RequestIDForTime(fireTimeMillis int64) int32 {
	return int32(fireTimeMillis % math.MaxInt32)
}

// RequestIDForAction derives a stable timer request identifier from an action
// type, so rescheduling the same action overwrites its pending timer entry.
func RequestIDForAction(a ActionType) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(a))
	return int32(h.Sum32() & math.MaxInt32)
}
