package e2e

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/testdata"
)

// startPipeline brings up a full session (mock camera, mock detectors) and
// the HTTP server in front of it.
func startPipeline(t *testing.T, st *store.Store, mode session.Mode) (*session.Session, *httptest.Server) {
	t.Helper()

	mocks := map[detector.Model]*detector.MockDetector{
		detector.ModelFace: detector.NewMockDetector(detector.ModelFace),
		detector.ModelHand: detector.NewMockDetector(detector.ModelHand),
		detector.ModelPose: detector.NewMockDetector(detector.ModelPose),
	}
	mocks[detector.ModelFace].SetSets([]detector.LandmarkSet{detector.FrontalFaceLandmarks()})
	mocks[detector.ModelHand].SetSets([]detector.LandmarkSet{detector.ScissorsHandLandmarks()})
	mocks[detector.ModelPose].SetSets([]detector.LandmarkSet{detector.VictoryBodyLandmarks()})

	frames := testdata.MovingSquareSequence(320, 240, 8)
	t.Cleanup(func() { testdata.CloseFrames(frames) })

	sess := session.New(session.Config{
		Mode: mode,
		NewDetector: func(model detector.Model, cfg detector.Config) (detector.Detector, error) {
			return mocks[model], nil
		},
	})
	sess.SetCamera(capture.NewMockCamera(frames, true))

	if err := sess.Start(); err != nil {
		t.Fatalf("session.Start() error = %v", err)
	}
	t.Cleanup(sess.Stop)

	srv := server.New(server.Config{Store: st, Session: sess})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	waitFor(t, func() bool { return sess.Ready() })
	return sess, ts
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestE2E_HandGestureWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	sess, ts := startPipeline(t, newStore(t), session.ModeHandGesture)
	client := ts.Client()

	t.Run("StatusReportsReady", func(t *testing.T) {
		waitFor(t, func() bool { return sess.Latest() != nil })

		resp, err := client.Get(ts.URL + "/api/status")
		if err != nil {
			t.Fatalf("status error = %v", err)
		}
		defer resp.Body.Close()

		var status session.Status
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if status.IsLoading || status.Error != "" {
			t.Errorf("status = %+v, want ready", status)
		}
		if status.Mode != session.ModeHandGesture {
			t.Errorf("mode = %s, want %s", status.Mode, session.ModeHandGesture)
		}
	})

	t.Run("LandmarksOverWebSocket", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/landmarks"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("websocket dial error = %v", err)
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("websocket read error = %v", err)
		}

		var update session.Update
		if err := json.Unmarshal(msg, &update); err != nil {
			t.Fatalf("decode update: %v", err)
		}
		if update.Mode != session.ModeHandGesture {
			t.Errorf("update mode = %s, want %s", update.Mode, session.ModeHandGesture)
		}
		if update.Hand == nil || update.Hand.Label != classify.GestureScissors {
			t.Errorf("update hand = %+v, want SCISSORS", update.Hand)
		}
	})

	t.Run("ModeSwitchOverAPI", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/mode",
			strings.NewReader(`{"mode":"body-pose"}`))
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("mode switch error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		waitFor(t, func() bool {
			u := sess.Latest()
			return u != nil && u.Mode == session.ModeBodyPose && u.Body != nil
		})
		if u := sess.Latest(); !u.Body.IsVictory {
			t.Error("victory fixture should classify as victory after switch")
		}
	})

	t.Run("HealthStillOK", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after pipeline operations")
		}
	})
}

func TestE2E_StreamServesFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	sess, ts := startPipeline(t, newStore(t), session.ModeFaceFilter)
	waitFor(t, func() bool { return sess.Latest() != nil })

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("stream request error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Fatalf("content type = %q, want multipart/x-mixed-replace", ct)
	}

	// Read until the first JPEG part header shows up
	reader := bufio.NewReader(resp.Body)
	found := false
	for !found {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		if strings.Contains(line, "image/jpeg") {
			found = true
		}
	}
}

func TestE2E_SettingsRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st := newStore(t)
	sess, ts := startPipeline(t, st, session.ModeFaceFilter)
	client := ts.Client()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/settings",
		strings.NewReader(`{"mode":"hand-gesture","enabled":false,"motion_threshold":2.0}`))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("settings update error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// Applied to the running session
	if sess.IsEnabled() {
		t.Error("session should be disabled after settings update")
	}
	if sess.Mode() != session.ModeHandGesture {
		t.Errorf("session mode = %s, want hand-gesture", sess.Mode())
	}

	// Persisted for the next run
	saved, err := st.Settings().Load()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if saved.Mode != "hand-gesture" || saved.Enabled || saved.MotionThreshold != 2.0 {
		t.Errorf("persisted settings = %+v", saved)
	}
}
