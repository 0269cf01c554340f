// Package classify maps landmark detection results to semantic states.
// Every classifier is a pure function of a single detection result; nothing
// is carried across frames.
package classify

import (
	"image"

	"github.com/ayusman/mudra/internal/detector"
)

// Face-filter geometry constants. The radius scales with the apparent face
// size and is clamped to keep the decoration on screen at any distance.
const (
	FaceRadiusScale = 0.15
	FaceRadiusMin   = 10.0
	FaceRadiusMax   = 80.0
)

// FaceFilter is the face-filter classification for one frame: where to
// anchor the decoration and how large to draw it, in pixels.
type FaceFilter struct {
	Anchor image.Point `json:"anchor"`
	Radius float64     `json:"radius"`
}

// Face classifies the first detected face. The anchor is the nose tip
// denormalized to frame coordinates; the radius is proportional to the
// cheek-to-cheek pixel distance, clamped to [FaceRadiusMin, FaceRadiusMax].
// Returns ok=false when no face is detected.
func Face(result *detector.Result, width, height int) (FaceFilter, bool) {
	if result.Empty() {
		return FaceFilter{}, false
	}

	face := &result.Sets[0]
	if len(face.Points) <= detector.FaceRightCheek {
		return FaceFilter{}, false
	}

	nose := face.Points[detector.FaceNoseTip]
	anchor := image.Point{
		X: int(nose.X * float64(width)),
		Y: int(nose.Y * float64(height)),
	}

	cheekDist := face.PixelDistance(detector.FaceLeftCheek, detector.FaceRightCheek, width, height)
	radius := clamp(FaceRadiusScale*cheekDist, FaceRadiusMin, FaceRadiusMax)

	return FaceFilter{Anchor: anchor, Radius: radius}, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
