// Package api provides the JSON API handlers for the Mudra daemon.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/session"
)

// StatusHandler reports the live session state.
type StatusHandler struct {
	session *session.Session
}

// NewStatusHandler creates a new StatusHandler for the given session.
func NewStatusHandler(s *session.Session) *StatusHandler {
	return &StatusHandler{session: s}
}

// ServeHTTP handles GET /api/status.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, h.session.Status())
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
