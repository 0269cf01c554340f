// Package testdata provides synthetic camera frames for tests.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// SolidFrame returns a uniform BGR frame. The caller owns the Mat.
func SolidFrame(width, height int, value uint8) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	v := float64(value)
	mat.SetTo(gocv.NewScalar(v, v, v, 0))
	return &mat
}

// MovingSquareSequence returns frames with a bright square sliding across a
// dark background, enough pixel change per frame to register as motion.
func MovingSquareSequence(width, height, count int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, count)
	side := height / 4
	white := color.RGBA{255, 255, 255, 255}

	for i := 0; i < count; i++ {
		frame := SolidFrame(width, height, 20)
		x := (i * width / count) % (width - side)
		gocv.Rectangle(frame, image.Rect(x, height/3, x+side, height/3+side), white, -1)
		frames = append(frames, frame)
	}

	return frames
}

// CloseFrames releases every Mat in the slice.
func CloseFrames(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
