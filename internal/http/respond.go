package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"smartspend/internal/core"
	"smartspend/internal/services"
	"smartspend/internal/storage"
)

// maxBodyBytes caps request bodies; the API only ever receives small
// JSON documents.
const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeServiceError maps service and storage errors onto the API's status
// codes: 404 for missing records, 400 for validation and conflict errors
// surfaced by services, 500 for everything else.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	var inUse *services.CategoryInUseError

	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeMessage(w, http.StatusNotFound, notFoundMsg)
	case errors.As(err, &inUse):
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf(
			"Cannot delete category with %d transactions. Please reassign or delete transactions first.", inUse.Count))
	case errors.Is(err, services.ErrDefaultCategory):
		writeMessage(w, http.StatusBadRequest, "Cannot delete default categories")
	case errors.Is(err, services.ErrCategoryExists):
		writeMessage(w, http.StatusBadRequest, "Category with this name already exists")
	case errors.Is(err, services.ErrBudgetExists):
		writeMessage(w, http.StatusBadRequest, "Budget already exists for this category")
	case errors.Is(err, services.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, "User already exists with this email")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

// validationMessage converts a domain validation error to the API's wording.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyName):
		return "Name is required"
	case errors.Is(err, core.ErrInvalidCategory):
		return "Invalid category type"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be greater than 0"
	case errors.Is(err, core.ErrInvalidType):
		return "Type must be income or expense"
	case errors.Is(err, core.ErrInvalidPeriod):
		return "Invalid period"
	case errors.Is(err, core.ErrInvalidBillingDay):
		return "Billing day must be between 1 and 31"
	case errors.Is(err, core.ErrInvalidThreshold):
		return "Alert threshold must be between 0 and 100"
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category is required"
	case errors.Is(err, core.ErrEmptyDescription):
		return "Description is required"
	default:
		return err.Error()
	}
}
