package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jbweber/homelab/nbdhcp/internal/domain"
	"github.com/jbweber/homelab/nbdhcp/internal/repository"
)

// ErrorResponse is the body of every non-2xx JSON reply
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

func writeFieldError(w http.ResponseWriter, logger *zap.Logger, field, msg string) {
	writeJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: map[string]string{field: msg}})
}

// writeStoreError maps repository and validation errors onto HTTP statuses.
// what names the record for messages, e.g. "DHCP server".
func writeStoreError(w http.ResponseWriter, logger *zap.Logger, err error, what string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: verr.Fields})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, logger, http.StatusNotFound, what+" not found")
	case errors.Is(err, repository.ErrDuplicate):
		writeJSON(w, logger, http.StatusConflict, ErrorResponse{Error: duplicateMessage(err, what)})
	case errors.Is(err, repository.ErrInvalidReference):
		writeError(w, logger, http.StatusUnprocessableEntity, "Referenced IP address or DHCP server does not exist")
	case errors.Is(err, repository.ErrInvalidEntity):
		writeError(w, logger, http.StatusBadRequest, err.Error())
	default:
		logger.Error("store operation failed", zap.String("record", what), zap.Error(err))
		writeError(w, logger, http.StatusInternalServerError, "Internal server error")
	}
}

func duplicateMessage(err error, what string) string {
	var ierr *repository.IntegrityError
	if errors.As(err, &ierr) && ierr.Constraint != "" {
		return "A " + what + " with this value already exists: " + ierr.Constraint
	}
	return "A " + what + " with this value already exists"
}

// parseID reads the {id} URL parameter
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
