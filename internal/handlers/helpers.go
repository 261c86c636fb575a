package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/services"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// writeJSONResponse is a helper function to write JSON responses
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse is a helper function to write error responses
func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string, details []models.ErrorDetail) {
	writeJSONResponse(w, statusCode, models.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// writeServiceError maps the service error taxonomy onto an HTTP status
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	errType := services.ErrorType(err)

	status := http.StatusInternalServerError
	switch errType {
	case services.ErrTypeNotFound:
		status = http.StatusNotFound
	case services.ErrTypeValidation, services.ErrTypeInsufficientStock:
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeErrorResponse(w, status, errType, "Internal storage error", nil)
		return
	}

	slog.Warn("Request rejected",
		"method", r.Method,
		"path", r.URL.Path,
		"error_type", errType,
		"error", err)
	writeErrorResponse(w, status, errType, err.Error(), nil)
}

// decodeJSON reads a JSON body into dst, answering 400 itself on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		msg := "Invalid JSON"
		if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		slog.Warn("Invalid JSON in request", "path", r.URL.Path, "error", err, "remote_addr", r.RemoteAddr)
		writeErrorResponse(w, http.StatusBadRequest, services.ErrTypeValidation, msg, []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		})
		return false
	}
	return true
}

// parseID reads the {id} route variable, answering 400 itself when it is not a positive integer
func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeErrorResponse(w, http.StatusBadRequest, services.ErrTypeValidation, "Invalid id", []models.ErrorDetail{
			{Field: "id", Issue: "must be a positive integer"},
		})
		return 0, false
	}
	return id, true
}
