package handlers

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"

	"inventory-dashboard-api/internal/middleware"
	"inventory-dashboard-api/internal/services"
	"inventory-dashboard-api/internal/telemetry"
)

// RouterConfig carries everything the HTTP surface is built from.
// Telemetry and RateLimiter are optional.
type RouterConfig struct {
	Catalog     *services.CatalogService
	Transfers   *services.TransferService
	Alerts      *services.AlertService
	Dashboard   *services.DashboardService
	Reports     *services.ReportService
	Events      EventSource
	Health      HealthChecker
	Version     string
	Telemetry   *telemetry.ApiTelemetry
	RateLimiter *middleware.RateLimiter
}

// NewRouter registers every route on a gorilla/mux router
func NewRouter(cfg RouterConfig) *mux.Router {
	catalog := NewCatalogHandler(cfg.Catalog)
	transfers := NewTransferHandler(cfg.Transfers)
	alerts := NewAlertHandler(cfg.Alerts)
	dashboard := NewDashboardHandler(cfg.Dashboard, cfg.Reports)
	events := NewEventsHandler(cfg.Events)
	health := NewHealthHandler(cfg.Health, cfg.Version)

	router := mux.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Recoverer)
	router.Use(middleware.RequestLogger)
	if cfg.Telemetry != nil {
		router.Use(telemetry.NewTelemetryMiddleware(cfg.Telemetry).Middleware)
	}
	if cfg.RateLimiter != nil {
		router.Use(middleware.RateLimitMiddleware(cfg.RateLimiter))
	}

	router.HandleFunc("/health", health.Health).Methods(http.MethodGet)

	router.HandleFunc("/products", catalog.ListProducts).Methods(http.MethodGet)
	router.HandleFunc("/products", catalog.CreateProduct).Methods(http.MethodPost)
	router.HandleFunc("/products/{id}", catalog.GetProduct).Methods(http.MethodGet)
	router.HandleFunc("/products/{id}", catalog.UpdateProduct).Methods(http.MethodPut)
	router.HandleFunc("/products/{id}", catalog.DeleteProduct).Methods(http.MethodDelete)

	router.HandleFunc("/warehouses", catalog.ListWarehouses).Methods(http.MethodGet)
	router.HandleFunc("/warehouses", catalog.CreateWarehouse).Methods(http.MethodPost)
	router.HandleFunc("/warehouses/{id}", catalog.GetWarehouse).Methods(http.MethodGet)
	router.HandleFunc("/warehouses/{id}", catalog.UpdateWarehouse).Methods(http.MethodPut)
	router.HandleFunc("/warehouses/{id}", catalog.DeleteWarehouse).Methods(http.MethodDelete)

	router.HandleFunc("/stock", catalog.ListStock).Methods(http.MethodGet)
	router.HandleFunc("/stock", catalog.CreateStock).Methods(http.MethodPost)
	router.HandleFunc("/stock/{id}", catalog.GetStock).Methods(http.MethodGet)
	router.HandleFunc("/stock/{id}", catalog.UpdateStock).Methods(http.MethodPut)
	router.HandleFunc("/stock/{id}", catalog.DeleteStock).Methods(http.MethodDelete)

	router.HandleFunc("/transfers", transfers.ListTransfers).Methods(http.MethodGet)
	router.HandleFunc("/transfers", transfers.CreateTransfer).Methods(http.MethodPost)
	router.HandleFunc("/transfers/{id}", transfers.GetTransfer).Methods(http.MethodGet)
	router.HandleFunc("/transfers/{id}", transfers.UpdateTransfer).Methods(http.MethodPut)

	router.HandleFunc("/alerts", alerts.GetAlerts).Methods(http.MethodGet)
	router.HandleFunc("/alerts", alerts.UpdateAlert).Methods(http.MethodPut)

	router.HandleFunc("/dashboard", dashboard.GetDashboard).Methods(http.MethodGet)
	router.HandleFunc("/reports/inventory.xlsx", dashboard.GetInventoryReport).Methods(http.MethodGet)

	router.HandleFunc("/events", events.GetEvents).Methods(http.MethodGet)

	return router
}
