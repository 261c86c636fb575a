package handlers

import (
	"net/http"

	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/services"
)

// IdempotencyKeyHeader makes POST /transfers safe to retry
const IdempotencyKeyHeader = "Idempotency-Key"

type TransferHandler struct {
	transfers *services.TransferService
}

func NewTransferHandler(transfers *services.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// ListTransfers handles GET /transfers
func (h *TransferHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.transfers.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, transfers)
}

// GetTransfer handles GET /transfers/{id}
func (h *TransferHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	transfer, err := h.transfers.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, transfer)
}

// CreateTransfer handles POST /transfers
func (h *TransferHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.IdempotencyKey = r.Header.Get(IdempotencyKeyHeader)

	transfer, err := h.transfers.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, transfer)
}

// UpdateTransfer handles PUT /transfers/{id}
func (h *TransferHandler) UpdateTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req models.UpdateTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	transfer, err := h.transfers.UpdateStatus(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, transfer)
}
