package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results, including reconfiguring
// them while a pipeline goroutine is invoking DetectForVideo.
type MockDetector struct {
	model Model
	mu    sync.Mutex
	sets  []LandmarkSet
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector for the given model.
func NewMockDetector(model Model) *MockDetector {
	return &MockDetector{model: model}
}

// SetSets sets the landmark sets that will be returned by DetectForVideo.
func (m *MockDetector) SetSets(sets []LandmarkSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = sets
}

// SetError sets the error that will be returned by DetectForVideo.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times DetectForVideo has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Model returns the landmark model this detector mocks.
func (m *MockDetector) Model() Model {
	return m.model
}

// DetectForVideo returns the pre-configured sets or error.
func (m *MockDetector) DetectForVideo(frame *gocv.Mat, timestampMs int64) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &Result{Model: m.model, Sets: m.sets, TimestampMs: timestampMs}, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// ScissorsHandLandmarks returns a preset hand with index and middle fingers
// extended and ring and pinky curled. The thumb is curled.
func ScissorsHandLandmarks() LandmarkSet {
	set := emptyHand()

	// Wrist at lower center
	set.Points[Wrist] = Landmark{X: 0.50, Y: 0.80}

	// Thumb curled: tip barely further from the wrist than the IP joint is not,
	// so the horizontal rule reports not extended.
	set.Points[ThumbCMC] = Landmark{X: 0.54, Y: 0.76}
	set.Points[ThumbMCP] = Landmark{X: 0.57, Y: 0.72}
	set.Points[ThumbIP] = Landmark{X: 0.60, Y: 0.70}
	set.Points[ThumbTip] = Landmark{X: 0.58, Y: 0.69}

	// Index extended: tip above PIP
	set.Points[IndexMCP] = Landmark{X: 0.55, Y: 0.65}
	set.Points[IndexPIP] = Landmark{X: 0.56, Y: 0.50}
	set.Points[IndexDIP] = Landmark{X: 0.57, Y: 0.40}
	set.Points[IndexTip] = Landmark{X: 0.57, Y: 0.30}

	// Middle extended
	set.Points[MiddleMCP] = Landmark{X: 0.50, Y: 0.64}
	set.Points[MiddlePIP] = Landmark{X: 0.50, Y: 0.50}
	set.Points[MiddleDIP] = Landmark{X: 0.50, Y: 0.38}
	set.Points[MiddleTip] = Landmark{X: 0.50, Y: 0.30}

	// Ring curled: tip below PIP
	set.Points[RingMCP] = Landmark{X: 0.45, Y: 0.66}
	set.Points[RingPIP] = Landmark{X: 0.45, Y: 0.50}
	set.Points[RingDIP] = Landmark{X: 0.44, Y: 0.56}
	set.Points[RingTip] = Landmark{X: 0.44, Y: 0.60}

	// Pinky curled
	set.Points[PinkyMCP] = Landmark{X: 0.40, Y: 0.68}
	set.Points[PinkyPIP] = Landmark{X: 0.40, Y: 0.50}
	set.Points[PinkyDIP] = Landmark{X: 0.39, Y: 0.56}
	set.Points[PinkyTip] = Landmark{X: 0.39, Y: 0.60}

	return set
}

// OpenPalmHandLandmarks returns a preset hand with all five fingers extended.
func OpenPalmHandLandmarks() LandmarkSet {
	set := emptyHand()

	set.Points[Wrist] = Landmark{X: 0.50, Y: 0.80}

	// Thumb extended to the side: tip much further from the wrist than the IP
	set.Points[ThumbCMC] = Landmark{X: 0.55, Y: 0.75}
	set.Points[ThumbMCP] = Landmark{X: 0.62, Y: 0.70}
	set.Points[ThumbIP] = Landmark{X: 0.68, Y: 0.65}
	set.Points[ThumbTip] = Landmark{X: 0.75, Y: 0.60}

	set.Points[IndexMCP] = Landmark{X: 0.55, Y: 0.68}
	set.Points[IndexPIP] = Landmark{X: 0.57, Y: 0.55}
	set.Points[IndexDIP] = Landmark{X: 0.58, Y: 0.45}
	set.Points[IndexTip] = Landmark{X: 0.58, Y: 0.35}

	set.Points[MiddleMCP] = Landmark{X: 0.50, Y: 0.66}
	set.Points[MiddlePIP] = Landmark{X: 0.50, Y: 0.52}
	set.Points[MiddleDIP] = Landmark{X: 0.50, Y: 0.40}
	set.Points[MiddleTip] = Landmark{X: 0.50, Y: 0.28}

	set.Points[RingMCP] = Landmark{X: 0.45, Y: 0.68}
	set.Points[RingPIP] = Landmark{X: 0.43, Y: 0.55}
	set.Points[RingDIP] = Landmark{X: 0.42, Y: 0.45}
	set.Points[RingTip] = Landmark{X: 0.42, Y: 0.35}

	set.Points[PinkyMCP] = Landmark{X: 0.40, Y: 0.70}
	set.Points[PinkyPIP] = Landmark{X: 0.37, Y: 0.60}
	set.Points[PinkyDIP] = Landmark{X: 0.35, Y: 0.50}
	set.Points[PinkyTip] = Landmark{X: 0.34, Y: 0.42}

	return set
}

// FistHandLandmarks returns a preset hand with all fingers curled.
func FistHandLandmarks() LandmarkSet {
	set := emptyHand()

	set.Points[Wrist] = Landmark{X: 0.50, Y: 0.80}

	// Thumb folded across the palm, tip closer to the wrist than the IP
	set.Points[ThumbCMC] = Landmark{X: 0.55, Y: 0.76}
	set.Points[ThumbMCP] = Landmark{X: 0.58, Y: 0.72}
	set.Points[ThumbIP] = Landmark{X: 0.60, Y: 0.70}
	set.Points[ThumbTip] = Landmark{X: 0.56, Y: 0.69}

	curl := func(mcp, pip, dip, tip int, x float64) {
		set.Points[mcp] = Landmark{X: x, Y: 0.66}
		set.Points[pip] = Landmark{X: x, Y: 0.58}
		set.Points[dip] = Landmark{X: x - 0.01, Y: 0.63}
		set.Points[tip] = Landmark{X: x - 0.02, Y: 0.68}
	}
	curl(IndexMCP, IndexPIP, IndexDIP, IndexTip, 0.55)
	curl(MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip, 0.50)
	curl(RingMCP, RingPIP, RingDIP, RingTip, 0.45)
	curl(PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip, 0.40)

	return set
}

// VictoryBodyLandmarks returns a preset body with both wrists raised above
// the nose.
func VictoryBodyLandmarks() LandmarkSet {
	set := neutralBody()
	set.Points[PoseLeftWrist] = Landmark{X: 0.30, Y: 0.10, Visibility: 0.99}
	set.Points[PoseRightWrist] = Landmark{X: 0.70, Y: 0.12, Visibility: 0.99}
	set.Points[PoseLeftElbow] = Landmark{X: 0.32, Y: 0.22, Visibility: 0.99}
	set.Points[PoseRightElbow] = Landmark{X: 0.68, Y: 0.22, Visibility: 0.99}
	return set
}

// StandingBodyLandmarks returns a preset body with arms lowered.
func StandingBodyLandmarks() LandmarkSet {
	return neutralBody()
}

// FrontalFaceLandmarks returns a preset face looking straight at the camera.
// Only the indices the face-filter mode reads carry meaningful positions.
func FrontalFaceLandmarks() LandmarkSet {
	set := LandmarkSet{
		Points: make([]Landmark, NumFaceLandmarks),
		Score:  0.97,
	}
	for i := range set.Points {
		set.Points[i] = Landmark{X: 0.50, Y: 0.45}
	}
	set.Points[FaceNoseTip] = Landmark{X: 0.50, Y: 0.48}
	set.Points[FaceLeftCheek] = Landmark{X: 0.38, Y: 0.50}
	set.Points[FaceRightCheek] = Landmark{X: 0.62, Y: 0.50}
	return set
}

func emptyHand() LandmarkSet {
	return LandmarkSet{
		Points:     make([]Landmark, NumHandLandmarks),
		Handedness: "Right",
		Score:      0.95,
	}
}

func neutralBody() LandmarkSet {
	set := LandmarkSet{
		Points: make([]Landmark, NumPoseLandmarks),
		Score:  0.95,
	}
	set.Points[PoseNose] = Landmark{X: 0.50, Y: 0.20, Visibility: 0.99}
	set.Points[PoseLeftEye] = Landmark{X: 0.47, Y: 0.18, Visibility: 0.99}
	set.Points[PoseRightEye] = Landmark{X: 0.53, Y: 0.18, Visibility: 0.99}
	set.Points[PoseLeftEar] = Landmark{X: 0.45, Y: 0.20, Visibility: 0.95}
	set.Points[PoseRightEar] = Landmark{X: 0.55, Y: 0.20, Visibility: 0.95}
	set.Points[PoseLeftShoulder] = Landmark{X: 0.38, Y: 0.32, Visibility: 0.99}
	set.Points[PoseRightShoulder] = Landmark{X: 0.62, Y: 0.32, Visibility: 0.99}
	set.Points[PoseLeftElbow] = Landmark{X: 0.34, Y: 0.45, Visibility: 0.98}
	set.Points[PoseRightElbow] = Landmark{X: 0.66, Y: 0.45, Visibility: 0.98}
	set.Points[PoseLeftWrist] = Landmark{X: 0.32, Y: 0.58, Visibility: 0.97}
	set.Points[PoseRightWrist] = Landmark{X: 0.68, Y: 0.58, Visibility: 0.97}
	set.Points[PoseLeftHip] = Landmark{X: 0.42, Y: 0.60, Visibility: 0.99}
	set.Points[PoseRightHip] = Landmark{X: 0.58, Y: 0.60, Visibility: 0.99}
	set.Points[PoseLeftKnee] = Landmark{X: 0.42, Y: 0.78, Visibility: 0.95}
	set.Points[PoseRightKnee] = Landmark{X: 0.58, Y: 0.78, Visibility: 0.95}
	set.Points[PoseLeftAnkle] = Landmark{X: 0.42, Y: 0.95, Visibility: 0.90}
	set.Points[PoseRightAnkle] = Landmark{X: 0.58, Y: 0.95, Visibility: 0.90}
	return set
}
