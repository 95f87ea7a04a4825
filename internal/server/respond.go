package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// body is shorthand for ad-hoc JSON responses, mirroring the loose payload
// shapes the API has always served.
type body map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, body{"error": msg})
}
