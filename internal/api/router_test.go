package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/snapwitch/snapwitch/internal/analytics"
	"github.com/snapwitch/snapwitch/internal/api"
	"github.com/snapwitch/snapwitch/internal/api/models"
	"github.com/snapwitch/snapwitch/internal/auth"
	"github.com/snapwitch/snapwitch/internal/connectivity"
	"github.com/snapwitch/snapwitch/internal/device"
	"github.com/snapwitch/snapwitch/internal/notification"
	"github.com/snapwitch/snapwitch/internal/schedule"
	"github.com/snapwitch/snapwitch/internal/timer"
	"github.com/snapwitch/snapwitch/internal/usage"
)

type testEnv struct {
	router        http.Handler
	notifications *notification.Service
	usage         usage.Repository
	store         timer.Store
	coordinator   *schedule.Coordinator
}

func newTestEnv(tokens *auth.TokenService) *testEnv {
	log := zerolog.Nop()

	store := timer.NewInMemoryStore()
	notifications := notification.NewService(notification.ServiceConfig{
		Repository: notification.NewInMemoryRepository(),
		Logger:     log,
	})
	usageRepo := usage.NewInMemoryRepository()

	coordinator := schedule.NewCoordinator(schedule.CoordinatorConfig{
		Notifications: notifications,
		Toggler:       device.NewLogToggler(log),
		Analytics:     analytics.NewLogSink(log),
		Usage:         usageRepo,
		Logger:        log,
	})
	dispatcher := timer.NewDispatcher(timer.DispatcherConfig{
		Store:   store,
		Handler: coordinator.HandleFire,
		Logger:  log,
	})
	coordinator.SetRegistrar(dispatcher)

	broadcaster := connectivity.NewBroadcaster()
	notifier := connectivity.NewNotifier(connectivity.NotifierConfig{
		Observer:      broadcaster,
		Notifications: notifications,
		Logger:        log,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:       "test",
		BuildTime:     "test",
		Logger:        log,
		Coordinator:   coordinator,
		Notifications: notifications,
		Notifier:      notifier,
		Broadcaster:   broadcaster,
		Usage:         usageRepo,
		Analytics:     analytics.NewLogSink(log),
		Tokens:        tokens,
	})

	return &testEnv{
		router:        router,
		notifications: notifications,
		usage:         usageRepo,
		store:         store,
		coordinator:   coordinator,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_CreateOnceSchedule(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(t, http.MethodPost, "/v1/schedules", models.ScheduleOnceRequest{
		Action:      "TOGGLE_WIFI",
		StartHour:   10,
		StartMinute: 0,
		EndHour:     12,
		EndMinute:   30,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var out models.ScheduleOnceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Action != "TOGGLE_WIFI" {
		t.Errorf("unexpected action %q", out.Action)
	}
	if out.StartTime == 0 || out.EndTime == 0 {
		t.Errorf("expected resolved fire times, got %d / %d", out.StartTime, out.EndTime)
	}

	// The pending timer entry is registered under the action-derived ID.
	reg, err := env.store.Get(context.Background(), schedule.RequestIDForAction(schedule.ToggleWifi))
	if err != nil {
		t.Fatalf("no registration stored: %v", err)
	}
	if reg.Action != schedule.ToggleWifi {
		t.Errorf("unexpected stored action %s", reg.Action)
	}

	// A confirmation record is appended.
	records, err := env.notifications.List(context.Background())
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 confirmation record, got %d", len(records))
	}
	if records[0].Message != "Wifi Scheduler Saved and Started" {
		t.Errorf("unexpected confirmation message %q", records[0].Message)
	}
	if records[0].Icon != notification.IconWarning {
		t.Errorf("unexpected confirmation icon %q", records[0].Icon)
	}
}

func TestRouter_CreateOnceSchedule_BadInput(t *testing.T) {
	env := newTestEnv(nil)

	cases := []struct {
		name string
		body models.ScheduleOnceRequest
	}{
		{"unknown action", models.ScheduleOnceRequest{Action: "TOGGLE_5G", StartHour: 10}},
		{"hour out of range", models.ScheduleOnceRequest{Action: "TOGGLE_WIFI", StartHour: 24}},
		{"minute out of range", models.ScheduleOnceRequest{Action: "TOGGLE_WIFI", StartHour: 10, EndMinute: 60}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/v1/schedules", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("expected problem+json, got %q", ct)
			}
		})
	}
}

func TestRouter_CreateRepeatSchedule(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(t, http.MethodPost, "/v1/schedules/repeat", models.ScheduleRepeatRequest{
		Action: "TOGGLE_BLUETOOTH_NOTIFICATION",
		Days:   []string{"Monday", "Friday"},
		Hour:   8,
		Minute: 15,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var out models.ScheduleRepeatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Results) != 2 {
		t.Fatalf("expected 2 per-day results, got %d", len(out.Results))
	}
	for _, res := range out.Results {
		if res.Error != "" {
			t.Errorf("day %s failed: %s", res.Day, res.Error)
		}
		if res.FireTime == 0 || res.RequestID == 0 {
			t.Errorf("day %s missing fire time or request ID", res.Day)
		}
	}

	records, _ := env.notifications.List(context.Background())
	if len(records) != 1 {
		t.Fatalf("expected 1 confirmation record, got %d", len(records))
	}
	if len(records[0].RepeatDays) != 2 {
		t.Errorf("expected repeat days on confirmation, got %v", records[0].RepeatDays)
	}
}

func TestRouter_CreateRepeatSchedule_MixedDays(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(t, http.MethodPost, "/v1/schedules/repeat", models.ScheduleRepeatRequest{
		Action: "TOGGLE_DATA_NOTIFICATION",
		Days:   []string{"Monday", "Blursday"},
		Hour:   8,
		Minute: 15,
	})
	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("expected 207, got %d: %s", rec.Code, rec.Body.String())
	}

	var out models.ScheduleRepeatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Results[0].Error != "" {
		t.Errorf("Monday should succeed, got %q", out.Results[0].Error)
	}
	if out.Results[1].Error == "" {
		t.Error("Blursday should fail")
	}
}

func TestRouter_CreateRepeatSchedule_NoDays(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(t, http.MethodPost, "/v1/schedules/repeat", models.ScheduleRepeatRequest{
		Action: "TOGGLE_DATA_NOTIFICATION",
		Hour:   8,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRouter_NotificationLifecycle(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	seed := []notification.Record{
		{Title: "a", Message: "m", Time: 100},
		{Title: "b", Message: "m", Time: 200},
	}
	for _, rec := range seed {
		if err := env.notifications.Append(ctx, rec); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	rec := env.do(t, http.MethodGet, "/v1/notifications", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listed []notification.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 2 || listed[0].Title != "b" {
		t.Errorf("expected newest first [b a], got %+v", listed)
	}

	if rec := env.do(t, http.MethodDelete, "/v1/notifications/100", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	remaining, _ := env.notifications.List(ctx)
	if len(remaining) != 1 || remaining[0].Time != 200 {
		t.Errorf("expected only the time-200 record, got %+v", remaining)
	}

	if rec := env.do(t, http.MethodDelete, "/v1/notifications/notatime", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad timestamp, got %d", rec.Code)
	}

	if rec := env.do(t, http.MethodDelete, "/v1/notifications", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	remaining, _ = env.notifications.List(ctx)
	if len(remaining) != 0 {
		t.Errorf("expected empty list after clear, got %d", len(remaining))
	}
}

func TestRouter_Status(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(t, http.MethodGet, "/v1/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out models.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode status: %v", err)
	}

	rec = env.do(t, http.MethodPost, "/v1/status", map[string]bool{"isWifiEnabled": true})
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/v1/status/network", map[string]bool{"available": true})
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}
}

func TestRouter_Usage(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	env.coordinator.HandleFire(ctx, schedule.ToggleWifi)
	env.coordinator.HandleFire(ctx, schedule.ToggleWifi)

	rec := env.do(t, http.MethodGet, "/v1/usage/Wifi", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out models.UsageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode usage: %v", err)
	}
	if out.Feature != "Wifi" || out.Count != 2 || len(out.Events) != 2 {
		t.Errorf("unexpected usage response %+v", out)
	}

	if rec := env.do(t, http.MethodGet, "/v1/usage/Hotspot", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown feature, got %d", rec.Code)
	}
}

func TestRouter_AuthRequired(t *testing.T) {
	tokens := auth.NewTokenService(auth.TokenConfig{SigningKey: "router-test-key"})
	env := newTestEnv(tokens)

	// No token.
	rec := env.do(t, http.MethodGet, "/v1/notifications", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	// Health stays public.
	if rec := env.do(t, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("expected public healthz, got %d", rec.Code)
	}

	// Valid token.
	token, _, err := tokens.Issue("test-client")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with valid token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRouter_MintToken(t *testing.T) {
	tokens := auth.NewTokenService(auth.TokenConfig{SigningKey: "router-test-key"})
	env := newTestEnv(tokens)

	// Wrong secret.
	rec := env.do(t, http.MethodPost, "/v1/tokens", map[string]string{
		"secret": "not-the-key",
		"client": "widget-app",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong secret, got %d", rec.Code)
	}

	// Missing client name.
	rec = env.do(t, http.MethodPost, "/v1/tokens", map[string]string{
		"secret": "router-test-key",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing client, got %d", rec.Code)
	}

	// Minted token works against the authed surface.
	rec = env.do(t, http.MethodPost, "/v1/tokens", map[string]string{
		"secret": "router-test-key",
		"client": "widget-app",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var minted struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &minted); err != nil {
		t.Fatalf("decode mint response: %v", err)
	}
	if minted.Token == "" {
		t.Fatal("expected a non-empty token")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+minted.Token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with minted token, got %d: %s", w.Code, w.Body.String())
	}

	// Without a token service the mint route is absent.
	open := newTestEnv(nil)
	rec = open.do(t, http.MethodPost, "/v1/tokens", map[string]string{
		"secret": "router-test-key",
		"client": "widget-app",
	})
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected mint route absent, got %d", rec.Code)
	}
}
