package classify

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// Gesture is the discrete hand gesture label.
type Gesture string

const (
	GestureRock     Gesture = "ROCK"
	GesturePaper    Gesture = "PAPER"
	GestureScissors Gesture = "SCISSORS"
	GestureUnknown  Gesture = "UNKNOWN"
)

// Finger positions in the Extended array.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// HandGesture is the hand-gesture classification for one frame.
type HandGesture struct {
	Label         Gesture `json:"label"`
	ExtendedCount int     `json:"extended_count"`
	Extended      [5]bool `json:"extended"`
}

// Hand classifies the first detected hand into a rock/paper/scissors label.
//
// A non-thumb finger counts as extended when its tip is above its PIP joint
// in image space (smaller Y). This ignores hand rotation and depth; it is a
// deliberate approximation inherited from the reference behavior, not a bug.
// The thumb counts as extended when its tip is horizontally further from the
// wrist than its IP joint is.
//
// Label precedence, first match wins:
//  1. SCISSORS: index and middle extended, ring and pinky not (thumb ignored)
//  2. ROCK: at most one finger extended
//  3. PAPER: all five extended
//  4. UNKNOWN otherwise, carrying the count for display
func Hand(result *detector.Result) (HandGesture, bool) {
	if result.Empty() {
		return HandGesture{}, false
	}

	hand := &result.Sets[0]
	if len(hand.Points) < detector.NumHandLandmarks {
		return HandGesture{}, false
	}

	var g HandGesture
	g.Extended[Thumb] = thumbExtended(hand)
	g.Extended[Index] = fingerExtended(hand, detector.IndexTip, detector.IndexPIP)
	g.Extended[Middle] = fingerExtended(hand, detector.MiddleTip, detector.MiddlePIP)
	g.Extended[Ring] = fingerExtended(hand, detector.RingTip, detector.RingPIP)
	g.Extended[Pinky] = fingerExtended(hand, detector.PinkyTip, detector.PinkyPIP)

	for _, ext := range g.Extended {
		if ext {
			g.ExtendedCount++
		}
	}

	switch {
	case g.Extended[Index] && g.Extended[Middle] && !g.Extended[Ring] && !g.Extended[Pinky]:
		g.Label = GestureScissors
	case g.ExtendedCount <= 1:
		g.Label = GestureRock
	case g.ExtendedCount == 5:
		g.Label = GesturePaper
	default:
		g.Label = GestureUnknown
	}

	return g, true
}

// fingerExtended reports whether the fingertip is above its PIP joint in
// image space.
func fingerExtended(hand *detector.LandmarkSet, tip, pip int) bool {
	return hand.Points[tip].Y < hand.Points[pip].Y
}

// thumbExtended compares horizontal wrist distances of the thumb tip and the
// thumb IP joint.
func thumbExtended(hand *detector.LandmarkSet) bool {
	wristX := hand.Points[detector.Wrist].X
	tipDist := math.Abs(wristX - hand.Points[detector.ThumbTip].X)
	ipDist := math.Abs(wristX - hand.Points[detector.ThumbIP].X)
	return tipDist > ipDist
}
