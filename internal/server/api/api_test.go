package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "mudra-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestStatusHandler(t *testing.T) {
	sess := session.New(session.Config{Mode: session.ModeHandGesture})
	handler := NewStatusHandler(sess)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var status session.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if status.Mode != session.ModeHandGesture {
		t.Errorf("expected mode %s, got %s", session.ModeHandGesture, status.Mode)
	}
	if status.SessionID == "" {
		t.Error("expected a session id")
	}
	if !status.Enabled {
		t.Error("expected enabled by default")
	}
}

func TestStatusHandler_MethodNotAllowed(t *testing.T) {
	handler := NewStatusHandler(session.New(session.Config{}))

	req := httptest.NewRequest(http.MethodPost, "/api/status", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestModeHandler_Get(t *testing.T) {
	sess := session.New(session.Config{Mode: session.ModeBodyPose})
	handler := NewModeHandler(sess, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/mode", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp modeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Mode != session.ModeBodyPose {
		t.Errorf("expected mode %s, got %s", session.ModeBodyPose, resp.Mode)
	}
}

func TestModeHandler_Set(t *testing.T) {
	st := newTestStore(t)
	sess := session.New(session.Config{Mode: session.ModeFaceFilter})
	handler := NewModeHandler(sess, st)

	body, _ := json.Marshal(setModeRequest{Mode: session.ModeHandGesture})
	req := httptest.NewRequest(http.MethodPut, "/api/mode", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := sess.Mode(); got != session.ModeHandGesture {
		t.Errorf("session mode = %s, want %s", got, session.ModeHandGesture)
	}

	// The switch persists for the next run
	value, err := st.Settings().Get(store.KeyMode)
	if err != nil {
		t.Fatalf("failed to read persisted mode: %v", err)
	}
	if value != string(session.ModeHandGesture) {
		t.Errorf("persisted mode = %q, want %q", value, session.ModeHandGesture)
	}
}

func TestModeHandler_SetInvalid(t *testing.T) {
	sess := session.New(session.Config{Mode: session.ModeFaceFilter})
	handler := NewModeHandler(sess, nil)

	body := []byte(`{"mode":"laser-eyes"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/mode", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if got := sess.Mode(); got != session.ModeFaceFilter {
		t.Errorf("invalid mode must not apply, session mode = %s", got)
	}
}

func TestModeHandler_SetBadJSON(t *testing.T) {
	handler := NewModeHandler(session.New(session.Config{}), nil)

	req := httptest.NewRequest(http.MethodPut, "/api/mode", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestSettingsHandler_GetDefaults(t *testing.T) {
	handler := NewSettingsHandler(newTestStore(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var settings store.Settings
	if err := json.NewDecoder(rec.Body).Decode(&settings); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if settings != store.DefaultSettings() {
		t.Errorf("fresh store should serve defaults, got %+v", settings)
	}
}

func TestSettingsHandler_Update(t *testing.T) {
	st := newTestStore(t)
	sess := session.New(session.Config{Mode: session.ModeFaceFilter})
	handler := NewSettingsHandler(st, sess)

	body := []byte(`{"mode":"body-pose","enabled":false}`)
	req := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	// Applied live
	if got := sess.Mode(); got != session.ModeBodyPose {
		t.Errorf("session mode = %s, want %s", got, session.ModeBodyPose)
	}
	if sess.IsEnabled() {
		t.Error("session should be disabled after update")
	}

	// Persisted
	saved, err := st.Settings().Load()
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	if saved.Mode != "body-pose" || saved.Enabled {
		t.Errorf("persisted settings = %+v", saved)
	}

	// Unmentioned fields keep their previous values
	def := store.DefaultSettings()
	if saved.CameraID != def.CameraID || saved.Mirror != def.Mirror {
		t.Errorf("partial update must not clobber other fields, got %+v", saved)
	}
}

func TestSettingsHandler_UpdateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative camera id", `{"camera_id":-1}`},
		{"zero motion threshold", `{"motion_threshold":0}`},
		{"negative motion threshold", `{"motion_threshold":-2.5}`},
		{"motion threshold above 100", `{"motion_threshold":150}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestStore(t)
			handler := NewSettingsHandler(st, nil)

			req := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}

			saved, err := st.Settings().Load()
			if err != nil {
				t.Fatalf("failed to load settings: %v", err)
			}
			if saved != store.DefaultSettings() {
				t.Errorf("rejected update must not persist, got %+v", saved)
			}
		})
	}
}

func TestSettingsHandler_UpdateInvalidMode(t *testing.T) {
	st := newTestStore(t)
	handler := NewSettingsHandler(st, nil)

	body := []byte(`{"mode":"laser-eyes"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	saved, err := st.Settings().Load()
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	if saved.Mode != store.DefaultSettings().Mode {
		t.Errorf("rejected update must not persist, mode = %q", saved.Mode)
	}
}
