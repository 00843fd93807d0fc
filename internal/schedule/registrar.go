package schedule

import (
	"context"
	"errors"
)

// ErrSchedulingFailed is surfaced when a timer registration is rejected. The
// action is not considered scheduled and no retry is attempted automatically.
var ErrSchedulingFailed = errors.New("timer registration failed")

// Registration is one pending timer entry. Everything the fire handler needs
// travels in the registration itself; dispatch must not depend on in-memory
// state surviving a restart.
type Registration struct {
	RequestID int32
	FireAt    int64 // epoch milliseconds
	Action    ActionType
}

// Registrar registers timer entries, overwriting any pending entry with the
// same RequestID. Overwrite-in-place is the sole cancellation mechanism.
// Registration succeeds or fails synchronously; failures wrap
// ErrSchedulingFailed.
type Registrar interface {
	Register(ctx context.Context, reg Registration) error
}
