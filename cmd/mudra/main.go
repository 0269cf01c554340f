package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

const listenAddr = ":8080"

func main() {
	fmt.Println("Mudra - Live Landmark Detection")

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".mudra")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "mudra.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	settings, err := st.Settings().Load()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	mode := session.Mode(settings.Mode)
	if !mode.Valid() {
		mode = session.ModeFaceFilter
	}

	sess := session.New(session.Config{
		CameraID:     settings.CameraID,
		Mode:         mode,
		Mirror:       settings.Mirror,
		MotionThresh: settings.MotionThreshold,
		NewDetector:  newDetector,
	})
	sess.SetEnabled(settings.Enabled)

	if err := sess.Start(); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Session:   sess,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", listenAddr)
		if err := srv.ListenAndServe(listenAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	runTray(sess, st, mode)
}

// newDetector constructs the MediaPipe subprocess detector, falling back to
// a mock when the Python runtime is unavailable so the daemon still serves
// its UI surfaces.
func newDetector(model detector.Model, cfg detector.Config) (detector.Detector, error) {
	mp, err := detector.NewMediaPipeDetector(model, cfg)
	if err == nil {
		return mp, nil
	}
	log.Printf("MediaPipe %s landmarker unavailable (%v), using mock detector", model, err)
	return detector.NewMockDetector(model), nil
}

// runTray wires the system tray to the session and blocks until quit.
func runTray(sess *session.Session, st *store.Store, mode session.Mode) {
	tr := tray.New(mode)
	var stopOnce sync.Once

	tr.OnToggle(func(enabled bool) {
		sess.SetEnabled(enabled)
		if err := st.Settings().SetBool(store.KeyEnabled, enabled); err != nil {
			log.Printf("error persisting enabled state: %v", err)
		}
	})

	tr.OnMode(func(m session.Mode) {
		sess.SetMode(m)
		if err := st.Settings().Set(store.KeyMode, string(m)); err != nil {
			log.Printf("error persisting mode: %v", err)
		}
	})

	tr.OnSettings(func() {
		openBrowser("http://localhost" + listenAddr)
	})

	tr.OnQuit(func() {
		stopOnce.Do(sess.Stop)
	})

	// Keep the FPS line and mode check in sync with the session; the mode
	// can also change through the HTTP API.
	stopUpdates := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stopUpdates:
				return
			case <-ticker.C:
				status := sess.Status()
				tr.SetFPS(status.FPS)
				if status.Mode != tr.Mode() {
					tr.SetMode(status.Mode)
				}
			}
		}
	}()

	tr.Run()
	close(stopUpdates)
	stopOnce.Do(sess.Stop)
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("error opening browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
