package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/snapwitch/snapwitch/internal/api/models"
	"github.com/snapwitch/snapwitch/internal/api/response"
	"github.com/snapwitch/snapwitch/internal/notification"
)

// NotificationHandler handles notification history endpoints.
type NotificationHandler struct {
	notifications *notification.Service
	logger        zerolog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(svc *notification.Service, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: svc, logger: logger}
}

// List handles GET /v1/notifications - list stored records, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.notifications.List(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list notifications")
		return
	}
	if records == nil {
		records = []notification.Record{}
	}
	response.JSON(w, r, http.StatusOK, records)
}

// DeleteByTime handles DELETE /v1/notifications/{time} - remove every record
// stamped with the given time.
func (h *NotificationHandler) DeleteByTime(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "time")
	timeMillis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.BadRequest(w, r, "time must be an integer timestamp in milliseconds", []models.FieldError{{Field: "time", Message: "not a valid timestamp"}})
		return
	}

	if err := h.notifications.DeleteByTime(r.Context(), timeMillis); err != nil {
		response.InternalError(w, r, "failed to delete notification")
		return
	}
	response.JSON(w, r, http.StatusNoContent, nil)
}

// Clear handles DELETE /v1/notifications - remove all stored records.
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.Clear(r.Context()); err != nil {
		response.InternalError(w, r, "failed to clear notifications")
		return
	}
	response.JSON(w, r, http.StatusNoContent, nil)
}
