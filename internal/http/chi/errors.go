package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/clinic-webhooks/internal/tenant"
	"github.com/marcelsud/clinic-webhooks/webhook"
)

const (
	codeInvalidInput     = "INVALID_INPUT"
	codeNotFound         = "NOT_FOUND"
	codeInvalidOperation = "INVALID_OPERATION"
	codeMissingTenant    = "MISSING_TENANT"
	codeInternal         = "INTERNAL_ERROR"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
	})
}

// respondError maps domain errors onto the envelope; unexpected ones are logged, not echoed
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *webhook.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, codeInvalidInput, verr.Error())
	case errors.Is(err, webhook.ErrValidation):
		writeError(w, http.StatusBadRequest, codeInvalidInput, err.Error())
	case errors.Is(err, webhook.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
	case errors.Is(err, webhook.ErrInvalidOperation):
		writeError(w, http.StatusConflict, codeInvalidOperation, err.Error())
	default:
		oplog := httplog.LogEntry(r.Context())
		oplog.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func missingTenant(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusBadRequest, codeMissingTenant, "tenant header is required")
}

// tenantID is always set behind the tenant middleware
func tenantID(r *http.Request) string {
	id, _ := tenant.FromContext(r.Context())
	return id
}
