package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/snapwitch/snapwitch/internal/api/models"
	"github.com/snapwitch/snapwitch/internal/api/response"
	"github.com/snapwitch/snapwitch/internal/connectivity"
)

// StatusHandler exposes the current connectivity baseline and accepts
// readings pushed by the device agent.
type StatusHandler struct {
	notifier    *connectivity.Notifier
	broadcaster *connectivity.Broadcaster
	logger      zerolog.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(notifier *connectivity.Notifier, broadcaster *connectivity.Broadcaster, logger zerolog.Logger) *StatusHandler {
	return &StatusHandler{notifier: notifier, broadcaster: broadcaster, logger: logger}
}

// Get handles GET /v1/status - report the last observed connectivity state.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	baseline := h.notifier.StatusBaseline()
	response.JSON(w, r, http.StatusOK, models.StatusResponse{
		NetworkAvailable: h.notifier.NetworkBaseline(),
		WifiEnabled:      baseline.WifiEnabled,
		BluetoothEnabled: baseline.BluetoothEnabled,
	})
}

// statusReading is the agent-pushed connectivity snapshot.
type statusReading struct {
	WifiEnabled      bool `json:"isWifiEnabled"`
	BluetoothEnabled bool `json:"isBluetoothEnabled"`
}

// networkReading is the agent-pushed network-availability flag.
type networkReading struct {
	Available bool `json:"available"`
}

// PushStatus handles POST /v1/status - accept a connectivity snapshot from
// the device agent and feed it to the status stream.
func (h *StatusHandler) PushStatus(w http.ResponseWriter, r *http.Request) {
	var input statusReading
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	h.broadcaster.PublishStatus(connectivity.Status{
		WifiEnabled:      input.WifiEnabled,
		BluetoothEnabled: input.BluetoothEnabled,
	})
	response.JSON(w, r, http.StatusAccepted, nil)
}

// PushNetwork handles POST /v1/status/network - accept a network-availability
// reading from the device agent.
func (h *StatusHandler) PushNetwork(w http.ResponseWriter, r *http.Request) {
	var input networkReading
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	h.broadcaster.PublishNetwork(input.Available)
	response.JSON(w, r, http.StatusAccepted, nil)
}
