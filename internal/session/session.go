// Package session owns the per-session pipeline state: model lifecycle,
// the frame loop, FPS accounting, and the latest published outputs.
package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/overlay"
)

// Mode selects the active detection/classification/rendering pipeline.
type Mode string

const (
	ModeFaceFilter  Mode = "face-filter"
	ModeHandGesture Mode = "hand-gesture"
	ModeBodyPose    Mode = "body-pose"
)

// Valid reports whether m is one of the three defined modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeFaceFilter, ModeHandGesture, ModeBodyPose:
		return true
	}
	return false
}

// ModelFor returns the landmark model a mode dispatches to.
func ModelFor(m Mode) detector.Model {
	switch m {
	case ModeFaceFilter:
		return detector.ModelFace
	case ModeBodyPose:
		return detector.ModelPose
	default:
		return detector.ModelHand
	}
}

// Pipeline timing constants.
const (
	// DisplayFPS is the tick cadence while subjects are moving.
	DisplayFPS = 30
	// IdleFPS is the tick cadence after the scene goes still.
	IdleFPS = 5
	// IdleTimeout is how long the scene must stay still before the loop
	// drops to the idle cadence.
	IdleTimeout = 2 * time.Second
)

// DetectorFactory constructs a detector for a model. Tests inject mocks
// through it; production uses the MediaPipe subprocess detector.
type DetectorFactory func(model detector.Model, cfg detector.Config) (detector.Detector, error)

// Config holds configuration options for a session.
type Config struct {
	CameraID     int
	Mode         Mode
	Mirror       bool
	MotionThresh float64
	NewDetector  DetectorFactory
}

// Status is the session state surface exposed to the UI collaborators.
type Status struct {
	SessionID string `json:"session_id"`
	IsLoading bool   `json:"is_loading"`
	Error     string `json:"error,omitempty"`
	FPS       int    `json:"fps"`
	Mode      Mode   `json:"mode"`
	Enabled   bool   `json:"enabled"`
}

// Update is the latest per-frame output: the raw landmarks plus the active
// mode's classification. Exactly one classification field is set. Seq
// increases by one per published frame; consumers use it to tell updates
// apart, since two frames can share a timestamp at millisecond granularity.
type Update struct {
	Seq         uint64                `json:"seq"`
	Mode        Mode                  `json:"mode"`
	TimestampMs int64                 `json:"timestamp_ms"`
	Landmarks   *detector.Result      `json:"landmarks"`
	Face        *classify.FaceFilter  `json:"face,omitempty"`
	Hand        *classify.HandGesture `json:"hand,omitempty"`
	Body        *classify.BodyPose    `json:"body,omitempty"`
	FPS         int                   `json:"fps"`
}

// Session is one run of the pipeline from start to teardown. All mutable
// state lives here; nothing is ambient.
type Session struct {
	id     string
	config Config

	camera capture.Camera
	motion *capture.MotionDetector

	face detector.Detector
	hand detector.Detector
	pose detector.Detector

	surface *overlay.Surface
	fps     *fpsCounter

	mode    Mode
	enabled bool
	loading bool
	lastErr error
	alive   bool
	stopCh  chan struct{}
	done    chan struct{}

	snapshot    gocv.Mat
	hasSnapshot bool
	latest      *Update
	seq         uint64

	mu sync.RWMutex
}

// New creates a session with the given configuration. Nothing is started
// until Start is called.
func New(config Config) *Session {
	if config.Mode == "" {
		config.Mode = ModeFaceFilter
	}
	if config.MotionThresh <= 0 {
		config.MotionThresh = 1.0 // 1% pixel change
	}
	if config.NewDetector == nil {
		config.NewDetector = func(model detector.Model, cfg detector.Config) (detector.Detector, error) {
			return detector.NewMediaPipeDetector(model, cfg)
		}
	}

	return &Session{
		id:      uuid.New().String(),
		config:  config,
		camera:  capture.NewCamera(config.CameraID),
		motion:  capture.NewMotionDetector(config.MotionThresh),
		fps:     newFPSCounter(),
		mode:    config.Mode,
		enabled: true,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SetCamera replaces the frame source. Must be called before Start.
func (s *Session) SetCamera(c capture.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = c
}

// SetEnabled enables or disables frame processing. While disabled the loop
// keeps ticking but every tick is a no-op.
func (s *Session) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// IsEnabled returns whether frame processing is currently enabled.
func (s *Session) IsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SetMode switches the active mode. The switch takes effect on the next
// tick; no state carries over between modes.
func (s *Session) SetMode(mode Mode) {
	if !mode.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// Mode returns the active mode.
func (s *Session) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Ready reports whether all three detectors finished construction.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loading && s.lastErr == nil && s.face != nil && s.hand != nil && s.pose != nil
}

// Status returns the live session state for the UI collaborators.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		SessionID: s.id,
		IsLoading: s.loading,
		FPS:       s.fps.Value(),
		Mode:      s.mode,
		Enabled:   s.enabled,
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	return st
}

// Latest returns the most recently published update, or nil before the
// first processed frame.
func (s *Session) Latest() *Update {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Snapshot returns a clone of the latest composited frame, or nil before
// the first processed frame. The caller owns the returned Mat.
func (s *Session) Snapshot() *gocv.Mat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasSnapshot {
		return nil
	}
	clone := s.snapshot.Clone()
	return &clone
}

// Start opens the camera, kicks off model initialization, and starts the
// frame loop. The loop no-ops until initialization completes; on
// initialization failure the session carries a terminal error and the loop
// never processes a frame.
func (s *Session) Start() error {
	s.mu.Lock()

	if s.stopCh != nil {
		s.mu.Unlock()
		return nil
	}

	if err := s.camera.Open(); err != nil {
		s.mu.Unlock()
		return err
	}

	width, height := s.camera.Size()
	s.surface = overlay.NewSurface(width, height, s.config.Mirror)
	s.loading = true
	s.alive = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.initModels()
	go s.runLoop()

	log.Printf("session %s started (mode=%s)", s.id, s.Mode())
	return nil
}

// Stop cancels the frame loop and releases every resource. Any in-flight
// model initialization result is discarded.
func (s *Session) Stop() {
	s.mu.Lock()

	var done chan struct{}
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
		done = s.done
		s.done = nil
	}
	s.alive = false
	s.mu.Unlock()

	// Let an in-flight tick finish before tearing down its resources.
	if done != nil {
		<-done
	}

	s.mu.Lock()
	face, hand, pose := s.face, s.hand, s.pose
	s.face, s.hand, s.pose = nil, nil, nil

	if s.hasSnapshot {
		s.snapshot.Close()
		s.hasSnapshot = false
	}
	s.latest = nil

	surface := s.surface
	s.surface = nil
	s.mu.Unlock()

	if err := s.camera.Close(); err != nil {
		log.Printf("error closing camera: %v", err)
	}
	s.motion.Close()
	if surface != nil {
		surface.Close()
	}

	for _, d := range []detector.Detector{face, hand, pose} {
		if d == nil {
			continue
		}
		if err := d.Close(); err != nil {
			log.Printf("error closing %s detector: %v", d.Model(), err)
		}
	}

	log.Printf("session %s stopped", s.id)
}

// detectorFor returns the detector the given mode dispatches to.
func (s *Session) detectorFor(mode Mode) detector.Detector {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch mode {
	case ModeFaceFilter:
		return s.face
	case ModeBodyPose:
		return s.pose
	default:
		return s.hand
	}
}
