package detector

import "gocv.io/x/gocv"

// Detector defines the interface for landmark detection implementations.
// Each detector is stateful and expects monotonically increasing timestamps
// across calls, matching the video running mode of the underlying model.
type Detector interface {
	// DetectForVideo analyzes a video frame at the given timestamp and
	// returns the detected landmark sets. The returned result has zero
	// sets if no subject is detected.
	DetectForVideo(frame *gocv.Mat, timestampMs int64) (*Result, error)

	// Model returns which landmark model this detector runs.
	Model() Model

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for a landmark detector.
type Config struct {
	// MaxSubjects is the maximum number of subjects to detect per frame.
	MaxSubjects int

	// MinDetectionConfidence is the minimum detection confidence (0.0-1.0).
	MinDetectionConfidence float64

	// MinPresenceConfidence is the minimum presence confidence (0.0-1.0).
	MinPresenceConfidence float64

	// MinTrackingConfidence is the minimum tracking confidence (0.0-1.0).
	MinTrackingConfidence float64
}

// DefaultConfig returns the detector configuration for the given model.
// Subject caps are fixed per mode: 1 face, 2 hands, 1 body.
func DefaultConfig(model Model) Config {
	cfg := Config{
		MaxSubjects:            1,
		MinDetectionConfidence: 0.5,
		MinPresenceConfidence:  0.5,
		MinTrackingConfidence:  0.5,
	}
	if model == ModelHand {
		cfg.MaxSubjects = 2
	}
	return cfg
}
