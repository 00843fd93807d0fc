// Package handler implements the API endpoints.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/snapwitch/snapwitch/internal/analytics"
	"github.com/snapwitch/snapwitch/internal/api/models"
	"github.com/snapwitch/snapwitch/internal/api/response"
	"github.com/snapwitch/snapwitch/internal/notification"
	"github.com/snapwitch/snapwitch/internal/schedule"
)

// ScheduleHandler handles schedule-creation endpoints.
type ScheduleHandler struct {
	coordinator   *schedule.Coordinator
	notifications *notification.Service
	analytics     analytics.Sink
	logger        zerolog.Logger
}

// ScheduleHandlerConfig holds dependencies for the schedule handler.
type ScheduleHandlerConfig struct {
	Coordinator   *schedule.Coordinator
	Notifications *notification.Service
	Analytics     analytics.Sink
	Logger        zerolog.Logger
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(cfg ScheduleHandlerConfig) *ScheduleHandler {
	return &ScheduleHandler{
		coordinator:   cfg.Coordinator,
		notifications: cfg.Notifications,
		analytics:     cfg.Analytics,
		logger:        cfg.Logger,
	}
}

// CreateOnce handles POST /v1/schedules - create a one-shot schedule.
func (h *ScheduleHandler) CreateOnce(w http.ResponseWriter, r *http.Request) {
	var input models.ScheduleOnceRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	action, err := schedule.ParseActionType(input.Action)
	if err != nil {
		response.BadRequest(w, r, err.Error(), []models.FieldError{{Field: "action", Message: "unknown action type"}})
		return
	}

	resolver := h.coordinator.Resolver()
	startTime, err := resolver.ResolveOnceTime(input.StartHour, input.StartMinute)
	if err != nil {
		response.BadRequest(w, r, err.Error(), []models.FieldError{{Field: "startHour", Message: "invalid start time"}})
		return
	}
	endTime, err := resolver.ResolveOnceTime(input.EndHour, input.EndMinute)
	if err != nil {
		response.BadRequest(w, r, err.Error(), []models.FieldError{{Field: "endHour", Message: "invalid end time"}})
		return
	}

	if err := h.coordinator.ScheduleOnce(r.Context(), action, startTime, endTime); err != nil {
		if errors.Is(err, schedule.ErrSchedulingFailed) {
			response.ServiceUnavailable(w, r, "timer registration failed")
			return
		}
		response.InternalError(w, r, "failed to schedule action")
		return
	}

	h.confirm(r, action, nil)
	h.logEvent(r, analytics.EventSetWithNoRepeat, action)

	response.JSON(w, r, http.StatusCreated, models.ScheduleOnceResponse{
		Action:    string(action),
		StartTime: startTime,
		EndTime:   endTime,
	})
}

// CreateRepeat handles POST /v1/schedules/repeat - create a weekly repeating
// schedule. Registration outcomes are reported per day.
func (h *ScheduleHandler) CreateRepeat(w http.ResponseWriter, r *http.Request) {
	var input models.ScheduleRepeatRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	action, err := schedule.ParseActionType(input.Action)
	if err != nil {
		response.BadRequest(w, r, err.Error(), []models.FieldError{{Field: "action", Message: "unknown action type"}})
		return
	}
	if len(input.Days) == 0 {
		response.BadRequest(w, r, "at least one repeat day is required", []models.FieldError{{Field: "days", Message: "must not be empty"}})
		return
	}

	results := h.coordinator.ScheduleRepeating(r.Context(), action, input.Days, input.Hour, input.Minute)

	out := models.ScheduleRepeatResponse{Action: string(action)}
	anyOK := false
	for i, res := range results {
		dr := models.RepeatDayResult{Day: input.Days[i]}
		if res.Err != nil {
			dr.Error = res.Err.Error()
		} else {
			dr.FireTime = res.FireTime
			dr.RequestID = res.RequestID
			anyOK = true
		}
		out.Results = append(out.Results, dr)
	}

	if anyOK {
		h.confirm(r, action, input.Days)
		h.logEvent(r, analytics.EventSetWithRepeat+"["+strings.Join(input.Days, ", ")+"]", action)
	}

	status := http.StatusCreated
	if !anyOK {
		status = http.StatusBadRequest
	} else if len(input.Days) > 0 && !allRegistered(results) {
		status = http.StatusMultiStatus
	}
	response.JSON(w, r, status, out)
}

// confirm appends the "Saved and Started" notification record.
func (h *ScheduleHandler) confirm(r *http.Request, action schedule.ActionType, repeatDays []string) {
	feature := action.Feature()
	rec := notification.Record{
		Title:      feature + " Scheduler",
		Message:    feature + " Scheduler Saved and Started",
		Time:       time.Now().UnixMilli(),
		Icon:       notification.IconWarning,
		RepeatDays: repeatDays,
	}
	if err := h.notifications.Append(r.Context(), rec); err != nil {
		h.logger.Warn().Err(err).Str("action", string(action)).Msg("failed to record schedule confirmation")
	}
}

func (h *ScheduleHandler) logEvent(r *http.Request, event string, action schedule.ActionType) {
	if h.analytics == nil {
		return
	}
	h.analytics.Log(r.Context(), event, map[string]string{
		analytics.AttrSchedulerType: action.Feature(),
	})
}

func allRegistered(results []schedule.DayResult) bool {
	for _, res := range results {
		if res.Err != nil {
			return false
		}
	}
	return true
}
