package handlers

import (
	"log/slog"
	"net/http"

	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/services"
	"inventory-dashboard-api/internal/telemetry"
)

// Values of the ?action= query parameter on GET /alerts
const (
	actionStockStatus = "stock-status"
	actionGenerate    = "generate"
)

type AlertHandler struct {
	alerts *services.AlertService
}

func NewAlertHandler(alerts *services.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// GetAlerts handles GET /alerts. Without an action it lists alerts, optionally
// filtered by status and alertType.
func (h *AlertHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	switch action := query.Get("action"); action {
	case actionStockStatus:
		statuses, err := h.alerts.StockStatuses(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSONResponse(w, http.StatusOK, statuses)

	case actionGenerate:
		alerts, created, err := h.alerts.Generate(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		telemetry.SetAlertCount(r.Context(), created)
		writeJSONResponse(w, http.StatusOK, alerts)

	case "":
		filter := models.AlertFilter{
			Status:    query.Get("status"),
			AlertType: query.Get("alertType"),
		}
		alerts, err := h.alerts.List(r.Context(), filter)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSONResponse(w, http.StatusOK, alerts)

	default:
		slog.Warn("Unknown alerts action", "action", action)
		writeErrorResponse(w, http.StatusBadRequest, services.ErrTypeValidation, "Unknown action", []models.ErrorDetail{
			{Field: "action", Issue: "must be stock-status or generate"},
		})
	}
}

// UpdateAlert handles PUT /alerts
func (h *AlertHandler) UpdateAlert(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateAlertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	alert, err := h.alerts.Update(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("Alert updated", "alert_id", alert.ID, "status", alert.Status)
	writeJSONResponse(w, http.StatusOK, alert)
}
