package timer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/snapwitch/snapwitch/internal/schedule"
	"github.com/snapwitch/snapwitch/internal/timer"
)

type fireRecorder struct {
	mu    sync.Mutex
	fired []schedule.ActionType
}

func (f *fireRecorder) handle(_ context.Context, action schedule.ActionType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fired = append(f.fired, action)
}

func (f *fireRecorder) snapshot() []schedule.ActionType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]schedule.ActionType(nil), f.fired...)
}

func TestDispatcher_Register(t *testing.T) {
	store := timer.NewInMemoryStore()
	d := timer.NewDispatcher(timer.DispatcherConfig{
		Store:   store,
		Handler: func(context.Context, schedule.ActionType) {},
		Logger:  zerolog.Nop(),
	})
	ctx := context.Background()

	reg := schedule.Registration{RequestID: 42, FireAt: time.Now().Add(time.Hour).UnixMilli(), Action: schedule.NotifyWifi}
	if err := d.Register(ctx, reg); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	got, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Action != schedule.NotifyWifi {
		t.Errorf("expected stored action %s, got %s", schedule.NotifyWifi, got.Action)
	}
}

func TestDispatcher_FiresDueRegistrationOnce(t *testing.T) {
	store := timer.NewInMemoryStore()
	recorder := &fireRecorder{}
	d := timer.NewDispatcher(timer.DispatcherConfig{
		Store:        store,
		Handler:      recorder.handle,
		Logger:       zerolog.Nop(),
		PollInterval: 5 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Already due.
	err := d.Register(ctx, schedule.Registration{
		RequestID: 1,
		FireAt:    time.Now().Add(-time.Second).UnixMilli(),
		Action:    schedule.ToggleBluetooth,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	go func() { _ = d.Run(ctx) }()

	deadline := time.After(time.Second)
	for len(recorder.snapshot()) == 0 {
		select {
		case <-deadline:
			t.Fatal("registration never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// Let several more poll cycles pass; the claim-by-delete must prevent
	// a second delivery.
	time.Sleep(50 * time.Millisecond)

	fired := recorder.snapshot()
	if len(fired) != 1 {
		t.Fatalf("expected exactly one fire, got %d", len(fired))
	}
	if fired[0] != schedule.ToggleBluetooth {
		t.Errorf("expected %s, got %s", schedule.ToggleBluetooth, fired[0])
	}

	remaining, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected empty store after fire, got %d entries", len(remaining))
	}
}

func TestDispatcher_FutureRegistrationDoesNotFire(t *testing.T) {
	store := timer.NewInMemoryStore()
	recorder := &fireRecorder{}
	d := timer.NewDispatcher(timer.DispatcherConfig{
		Store:        store,
		Handler:      recorder.handle,
		Logger:       zerolog.Nop(),
		PollInterval: 5 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := d.Register(ctx, schedule.Registration{
		RequestID: 2,
		FireAt:    time.Now().Add(time.Hour).UnixMilli(),
		Action:    schedule.ToggleWifi,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	go func() { _ = d.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if fired := recorder.snapshot(); len(fired) != 0 {
		t.Errorf("future registration fired early: %v", fired)
	}
}
