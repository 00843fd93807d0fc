package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/snapwitch/snapwitch/internal/api/models"
	"github.com/snapwitch/snapwitch/internal/api/response"
	"github.com/snapwitch/snapwitch/internal/usage"
)

// UsageHandler handles feature-usage statistics endpoints.
type UsageHandler struct {
	usage  usage.Repository
	logger zerolog.Logger
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(repo usage.Repository, logger zerolog.Logger) *UsageHandler {
	return &UsageHandler{usage: repo, logger: logger}
}

var knownFeatures = map[string]bool{
	"Wifi":      true,
	"Bluetooth": true,
	"Network":   true,
}

// Get handles GET /v1/usage/{feature} - report usage count and events for one
// scheduler feature.
func (h *UsageHandler) Get(w http.ResponseWriter, r *http.Request) {
	feature := chi.URLParam(r, "feature")
	if !knownFeatures[feature] {
		response.NotFound(w, r, "unknown feature: "+feature)
		return
	}

	count, err := h.usage.CountForFeature(r.Context(), feature)
	if err != nil {
		response.InternalError(w, r, "failed to count feature usage")
		return
	}
	events, err := h.usage.ListForFeature(r.Context(), feature)
	if err != nil {
		response.InternalError(w, r, "failed to list feature usage")
		return
	}

	out := models.UsageResponse{
		Feature: feature,
		Count:   count,
		Events:  make([]models.UsageEvent, 0, len(events)),
	}
	for _, ev := range events {
		out.Events = append(out.Events, models.UsageEvent{Time: ev.Timestamp.UnixMilli()})
	}
	response.JSON(w, r, http.StatusOK, out)
}
