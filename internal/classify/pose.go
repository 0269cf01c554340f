package classify

import (
	"github.com/ayusman/mudra/internal/detector"
)

// BodyPose is the body-pose classification for one frame.
type BodyPose struct {
	IsVictory  bool              `json:"is_victory"`
	LeftWrist  detector.Landmark `json:"left_wrist"`
	RightWrist detector.Landmark `json:"right_wrist"`
	Nose       detector.Landmark `json:"nose"`
}

// Body classifies the first detected body. The victory pose requires both
// wrists strictly above the nose in image space; there is no lateral or
// distance constraint. Returns ok=false when no body is detected.
func Body(result *detector.Result) (BodyPose, bool) {
	if result.Empty() {
		return BodyPose{}, false
	}

	body := &result.Sets[0]
	if len(body.Points) < detector.NumPoseLandmarks {
		return BodyPose{}, false
	}

	p := BodyPose{
		LeftWrist:  body.Points[detector.PoseLeftWrist],
		RightWrist: body.Points[detector.PoseRightWrist],
		Nose:       body.Points[detector.PoseNose],
	}
	p.IsVictory = p.LeftWrist.Y < p.Nose.Y && p.RightWrist.Y < p.Nose.Y

	return p, true
}
