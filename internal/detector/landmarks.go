// Package detector provides landmark detection interfaces and types for the
// face, hand, and body models.
package detector

import "math"

// Model identifies which landmark model produced a result.
type Model string

const (
	// ModelFace is the face landmarker (478 points per face).
	ModelFace Model = "face"
	// ModelHand is the hand landmarker (21 points per hand).
	ModelHand Model = "hand"
	// ModelPose is the body pose landmarker (33 points per body).
	ModelPose Model = "pose"
)

// Landmark counts per model. The ordering and cardinality follow the
// MediaPipe numbering and must not be changed.
const (
	NumHandLandmarks = 21
	NumPoseLandmarks = 33
	NumFaceLandmarks = 478
)

// Hand landmark indices.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist     = 0
	ThumbCMC  = 1
	ThumbMCP  = 2
	ThumbIP   = 3
	ThumbTip  = 4
	IndexMCP  = 5
	IndexPIP  = 6
	IndexDIP  = 7
	IndexTip  = 8
	MiddleMCP = 9
	MiddlePIP = 10
	MiddleDIP = 11
	MiddleTip = 12
	RingMCP   = 13
	RingPIP   = 14
	RingDIP   = 15
	RingTip   = 16
	PinkyMCP  = 17
	PinkyPIP  = 18
	PinkyDIP  = 19
	PinkyTip  = 20
)

// Face mesh indices used by the face-filter mode.
const (
	FaceNoseTip    = 4
	FaceLeftCheek  = 234
	FaceRightCheek = 454
)

// Pose landmark indices.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	PoseNose          = 0
	PoseLeftEye       = 2
	PoseRightEye      = 5
	PoseLeftEar       = 7
	PoseRightEar      = 8
	PoseLeftShoulder  = 11
	PoseRightShoulder = 12
	PoseLeftElbow     = 13
	PoseRightElbow    = 14
	PoseLeftWrist     = 15
	PoseRightWrist    = 16
	PoseLeftHip       = 23
	PoseRightHip      = 24
	PoseLeftKnee      = 25
	PoseRightKnee     = 26
	PoseLeftAnkle     = 27
	PoseRightAnkle    = 28
)

// Landmark is a single normalized tracked point on a detected subject.
// X and Y are in [0,1] relative to the frame dimensions. Z is the model's
// depth estimate and Visibility its confidence that the point is in frame;
// both are zero when the model does not supply them.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility,omitempty"`
}

// LandmarkSet is the fixed-order collection of landmarks for one detected
// subject under one model. Points are index-addressed by the constants above.
type LandmarkSet struct {
	Points     []Landmark `json:"points"`
	Handedness string     `json:"handedness,omitempty"` // "Left" or "Right", hand model only
	Score      float64    `json:"score"`
}

// Result holds all landmark sets found in one frame for one model.
type Result struct {
	Model       Model         `json:"model"`
	Sets        []LandmarkSet `json:"sets"`
	TimestampMs int64         `json:"timestamp_ms"`
}

// Empty reports whether no subject was detected.
func (r *Result) Empty() bool {
	return r == nil || len(r.Sets) == 0
}

// PixelDistance returns the Euclidean distance in pixels between landmarks
// i and j of the set, denormalized against the given frame dimensions.
func (s *LandmarkSet) PixelDistance(i, j, width, height int) float64 {
	a, b := s.Points[i], s.Points[j]
	dx := (a.X - b.X) * float64(width)
	dy := (a.Y - b.Y) * float64(height)
	return math.Sqrt(dx*dx + dy*dy)
}
