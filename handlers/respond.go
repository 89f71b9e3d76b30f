package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"coursevault-backend/logging"
	"coursevault-backend/models"
)

// writeJSON encodes v as the response body with the given status code.
// Encoding failures are reported to logger.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", logging.Error(err))
	}
}

// writeError writes a JSON {"error": msg} body.
func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, models.ErrorResponse{Error: msg})
}

// decodeJSON decodes the request body into v, capping its size.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

const maxRequestBodyBytes = 4 << 20
