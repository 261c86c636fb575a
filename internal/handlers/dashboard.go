package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"inventory-dashboard-api/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	dashboard *services.DashboardService
	reports   *services.ReportService
}

func NewDashboardHandler(dashboard *services.DashboardService, reports *services.ReportService) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		reports:   reports,
	}
}

// GetDashboard handles GET /dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.dashboard.Metrics(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, metrics)
}

// GetInventoryReport handles GET /reports/inventory.xlsx
func (h *DashboardHandler) GetInventoryReport(w http.ResponseWriter, r *http.Request) {
	// buffered so a failure can still be answered with a JSON error
	var buf bytes.Buffer
	if err := h.reports.WriteInventoryWorkbook(r.Context(), &buf); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write inventory report", "error", err)
	}
}
