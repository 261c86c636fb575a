package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/services"
	"inventory-dashboard-api/internal/telemetry"
)

const (
	defaultEventsLimit = 100
	maxEventsLimit     = 1000
	maxWaitSeconds     = 60
)

// EventSource is the read side of the change feed
type EventSource interface {
	Events(fromOffset int64, limit int) ([]models.Event, int64, bool)
	Wait(ctx context.Context, fromOffset int64, timeout time.Duration) bool
}

// EventsHandler handles change feed polling
type EventsHandler struct {
	events EventSource
}

func NewEventsHandler(events EventSource) *EventsHandler {
	return &EventsHandler{events: events}
}

// GetEvents handles GET /events?offset=&limit=&wait=
func (h *EventsHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var offset int64
	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeErrorResponse(w, http.StatusBadRequest, services.ErrTypeValidation, "Invalid offset parameter", []models.ErrorDetail{
				{Field: "offset", Issue: "must be a non-negative integer"},
			})
			return
		}
		offset = parsed
	}

	limit := defaultEventsLimit
	if raw := query.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= maxEventsLimit {
			limit = parsed
		}
	}

	waitSeconds := 0
	if raw := query.Get("wait"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 && parsed <= maxWaitSeconds {
			waitSeconds = parsed
		}
	}

	slog.Debug("Events request received",
		"offset", offset,
		"limit", limit,
		"wait", waitSeconds,
		"remote_addr", r.RemoteAddr)

	events, nextOffset, hasMore := h.events.Events(offset, limit)

	if len(events) == 0 && waitSeconds > 0 {
		if !h.events.Wait(r.Context(), offset, time.Duration(waitSeconds)*time.Second) && r.Context().Err() != nil {
			slog.Debug("Client disconnected during long polling", "offset", offset)
			return
		}
		events, nextOffset, hasMore = h.events.Events(offset, limit)
	}

	telemetry.SetEventCount(r.Context(), len(events))

	writeJSONResponse(w, http.StatusOK, models.EventsResponse{
		Events:     events,
		NextOffset: nextOffset,
		HasMore:    hasMore,
		Count:      len(events),
	})
}
