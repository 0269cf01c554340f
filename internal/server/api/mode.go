package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

// ModeHandler reads and switches the active pipeline mode.
type ModeHandler struct {
	session *session.Session
	store   *store.Store
}

// NewModeHandler creates a new ModeHandler. The store may be nil, in which
// case mode switches are not persisted.
func NewModeHandler(s *session.Session, st *store.Store) *ModeHandler {
	return &ModeHandler{session: s, store: st}
}

type modeResponse struct {
	Mode session.Mode `json:"mode"`
}

type setModeRequest struct {
	Mode session.Mode `json:"mode"`
}

// ServeHTTP handles GET and PUT /api/mode.
func (h *ModeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, modeResponse{Mode: h.session.Mode()})
	case http.MethodPut:
		h.set(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// set handles PUT /api/mode. The switch takes effect on the next frame.
func (h *ModeHandler) set(w http.ResponseWriter, r *http.Request) {
	var req setModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !req.Mode.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid mode")
		return
	}

	h.session.SetMode(req.Mode)

	if h.store != nil {
		if err := h.store.Settings().Set(store.KeyMode, string(req.Mode)); err != nil {
			log.Printf("error persisting mode: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, modeResponse{Mode: h.session.Mode()})
}
