// Package overlay renders landmark skeletons and classification decorations
// onto a drawing surface aligned with the video frame.
package overlay

import (
	"image"

	"gocv.io/x/gocv"
)

// Surface is the transparent drawing layer the frame loop clears and redraws
// every tick. It does not own its sizing; the session creates it to match
// the frame dimensions. Black pixels are treated as transparent when the
// surface is composited onto a frame.
type Surface struct {
	mat      gocv.Mat
	width    int
	height   int
	mirrored bool
}

// NewSurface creates a surface of the given dimensions. When mirrored is
// true the composite will be flipped horizontally for a selfie-style view,
// and text drawing compensates so labels stay legible.
func NewSurface(width, height int, mirrored bool) *Surface {
	return &Surface{
		mat:      gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3),
		width:    width,
		height:   height,
		mirrored: mirrored,
	}
}

// Clear resets every pixel of the surface to transparent.
func (s *Surface) Clear() {
	s.mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
}

// Bounds returns the surface dimensions.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// Mirrored reports whether the composite view is horizontally flipped.
func (s *Surface) Mirrored() bool {
	return s.mirrored
}

// Mat exposes the underlying matrix for drawing.
func (s *Surface) Mat() *gocv.Mat {
	return &s.mat
}

// CompositeOnto blends the non-transparent surface pixels over the frame,
// applying the horizontal mirror flip when enabled. The frame is modified
// in place.
func (s *Surface) CompositeOnto(frame *gocv.Mat) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(s.mat, &gray, gocv.ColorBGRToGray)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, 0, 255, gocv.ThresholdBinary)

	s.mat.CopyToWithMask(frame, mask)

	if s.mirrored {
		gocv.Flip(*frame, frame, 1)
	}
}

// Close releases the surface resources.
func (s *Surface) Close() {
	s.mat.Close()
}
