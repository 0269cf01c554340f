package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

// SettingsHandler reads and updates the persisted application settings.
type SettingsHandler struct {
	store   *store.Store
	session *session.Session
}

// NewSettingsHandler creates a new SettingsHandler. The session may be nil,
// in which case updates only persist and nothing is applied live.
func NewSettingsHandler(st *store.Store, s *session.Session) *SettingsHandler {
	return &SettingsHandler{store: st, session: s}
}

// ServeHTTP handles GET and PUT /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// get handles GET /api/settings.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings().Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// update handles PUT /api/settings. Mode and enabled apply to the running
// session immediately; camera and mirror changes take effect on the next
// session start.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings().Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !session.Mode(settings.Mode).Valid() {
		writeError(w, http.StatusBadRequest, "Invalid mode")
		return
	}
	if settings.CameraID < 0 {
		writeError(w, http.StatusBadRequest, "Invalid camera id")
		return
	}
	// The threshold is the percentage of changed pixels that counts as motion
	if settings.MotionThreshold <= 0 || settings.MotionThreshold > 100 {
		writeError(w, http.StatusBadRequest, "Invalid motion threshold")
		return
	}

	if err := h.store.Settings().Save(settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	if h.session != nil {
		h.session.SetMode(session.Mode(settings.Mode))
		h.session.SetEnabled(settings.Enabled)
	}

	writeJSON(w, http.StatusOK, settings)
}
