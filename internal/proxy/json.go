package proxy

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yarenty/modelmux/internal/wire"
)

// writeJSON writes a JSON response with the given status code.
// Logs encoding failures internally using the provided context.
func writeJSON(ctx context.Context, w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	// Headers and status are written before encoding to avoid buffering.
	// If encoding fails, the client may receive a partial response.
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(ctx, "failed to encode JSON response", "error", err)
	}
}

// writeJSONError writes the {error:{message,type,code}} error body shape.
func writeJSONError(ctx context.Context, w http.ResponseWriter, message, errType string, status int) {
	writeJSON(ctx, w, wire.ErrorResponse{Error: wire.ErrorDetail{
		Message: message,
		Type:    errType,
		Code:    status,
	}}, status)
}
