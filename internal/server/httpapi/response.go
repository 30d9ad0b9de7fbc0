package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/libriahq/libria/internal/common"
	"github.com/libriahq/libria/internal/logging"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	_ = WriteJSON(w, code, ErrorResponse{Error: errCode, Message: message})
}

// HandleError maps a service error to an HTTP response. Provider and internal
// failures get a generic body; the detail goes to the log only.
func HandleError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	switch {
	case errors.Is(err, common.ErrorInvalidRequest):
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, common.ErrorUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, common.ErrorForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "access denied")
	case errors.Is(err, common.ErrorNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "item not found")
	case errors.Is(err, common.ErrorProvider):
		logger.Error(r.Context(), "storage provider failure", "error", err.Error())
		WriteError(w, http.StatusBadGateway, "provider_error", "storage provider unavailable")
	default:
		logger.Error(r.Context(), "request failed", "error", err.Error())
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
