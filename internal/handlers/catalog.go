package handlers

import (
	"log/slog"
	"net/http"

	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/services"
)

// CatalogHandler serves CRUD for products, warehouses and stock rows
type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListProducts handles GET /products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, products)
}

// GetProduct handles GET /products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, product)
}

// CreateProduct handles POST /products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if !decodeJSON(w, r, &product) {
		return
	}
	created, err := h.catalog.CreateProduct(r.Context(), product)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("Product created", "product_id", created.ID, "sku", created.SKU)
	writeJSONResponse(w, http.StatusCreated, created)
}

// UpdateProduct handles PUT /products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var patch models.ProductPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	updated, err := h.catalog.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("Product updated", "product_id", id)
	writeJSONResponse(w, http.StatusOK, updated)
}

// DeleteProduct handles DELETE /products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("Product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ListWarehouses handles GET /warehouses
func (h *CatalogHandler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.catalog.ListWarehouses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, warehouses)
}

// GetWarehouse handles GET /warehouses/{id}
func (h *CatalogHandler) GetWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	warehouse, err := h.catalog.GetWarehouse(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, warehouse)
}

// CreateWarehouse handles POST /warehouses
func (h *CatalogHandler) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var warehouse models.Warehouse
	if !decodeJSON(w, r, &warehouse) {
		return
	}
	created, err := h.catalog.CreateWarehouse(r.Context(), warehouse)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("Warehouse created", "warehouse_id", created.ID, "code", created.Code)
	writeJSONResponse(w, http.StatusCreated, created)
}

// UpdateWarehouse handles PUT /warehouses/{id}
func (h *CatalogHandler) UpdateWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var patch models.WarehousePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	updated, err := h.catalog.UpdateWarehouse(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("Warehouse updated", "warehouse_id", id)
	writeJSONResponse(w, http.StatusOK, updated)
}

// DeleteWarehouse handles DELETE /warehouses/{id}
func (h *CatalogHandler) DeleteWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.catalog.DeleteWarehouse(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("Warehouse deleted", "warehouse_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ListStock handles GET /stock
func (h *CatalogHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	stock, err := h.catalog.ListStock(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, stock)
}

// GetStock handles GET /stock/{id}
func (h *CatalogHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	row, err := h.catalog.GetStock(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, row)
}

// CreateStock handles POST /stock
func (h *CatalogHandler) CreateStock(w http.ResponseWriter, r *http.Request) {
	var row models.Stock
	if !decodeJSON(w, r, &row) {
		return
	}
	created, err := h.catalog.CreateStock(r.Context(), row)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("Stock row created",
		"stock_id", created.ID,
		"product_id", created.ProductID,
		"warehouse_id", created.WarehouseID)
	writeJSONResponse(w, http.StatusCreated, created)
}

// UpdateStock handles PUT /stock/{id}
func (h *CatalogHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var patch models.StockPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	updated, err := h.catalog.UpdateStock(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("Stock row updated", "stock_id", id, "quantity", updated.Quantity)
	writeJSONResponse(w, http.StatusOK, updated)
}

// DeleteStock handles DELETE /stock/{id}
func (h *CatalogHandler) DeleteStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.catalog.DeleteStock(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("Stock row deleted", "stock_id", id)
	w.WriteHeader(http.StatusNoContent)
}
