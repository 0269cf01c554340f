package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
)

// Mode colors and body region colors.
var (
	faceColor   = color.RGBA{R: 80, G: 220, B: 120, A: 255}
	handColor   = color.RGBA{R: 80, G: 200, B: 255, A: 255}
	headColor   = color.RGBA{R: 255, G: 220, B: 80, A: 255}
	armColor    = color.RGBA{R: 255, G: 120, B: 100, A: 255}
	legColor    = color.RGBA{R: 120, G: 140, B: 255, A: 255}
	boneColor   = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	labelColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	bannerColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	glowColor   = color.RGBA{R: 60, G: 255, B: 140, A: 255}
)

const (
	markerRadius  = 4
	boneThickness = 2
)

// handConnections is the fixed connectivity graph of the 21 hand landmarks.
var handConnections = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP}, {detector.PinkyMCP, detector.PinkyPIP},
	{detector.PinkyPIP, detector.PinkyDIP}, {detector.PinkyDIP, detector.PinkyTip},
	{detector.Wrist, detector.PinkyMCP},
}

// poseConnections is the fixed connectivity graph of the body skeleton.
var poseConnections = [][2]int{
	{detector.PoseNose, detector.PoseLeftEye}, {detector.PoseNose, detector.PoseRightEye},
	{detector.PoseLeftEye, detector.PoseLeftEar}, {detector.PoseRightEye, detector.PoseRightEar},
	{detector.PoseLeftShoulder, detector.PoseRightShoulder},
	{detector.PoseLeftShoulder, detector.PoseLeftElbow}, {detector.PoseLeftElbow, detector.PoseLeftWrist},
	{detector.PoseRightShoulder, detector.PoseRightElbow}, {detector.PoseRightElbow, detector.PoseRightWrist},
	{detector.PoseLeftShoulder, detector.PoseLeftHip}, {detector.PoseRightShoulder, detector.PoseRightHip},
	{detector.PoseLeftHip, detector.PoseRightHip},
	{detector.PoseLeftHip, detector.PoseLeftKnee}, {detector.PoseLeftKnee, detector.PoseLeftAnkle},
	{detector.PoseRightHip, detector.PoseRightKnee}, {detector.PoseRightKnee, detector.PoseRightAnkle},
}

// faceConnections links the named face indices the face-filter mode reads.
var faceConnections = [][2]int{
	{detector.FaceNoseTip, detector.FaceLeftCheek},
	{detector.FaceNoseTip, detector.FaceRightCheek},
}

// faceMarkers are the face indices drawn as landmark markers.
var faceMarkers = []int{detector.FaceNoseTip, detector.FaceLeftCheek, detector.FaceRightCheek}

// DrawFace renders the face-filter overlay: cheek and nose markers, their
// connecting segments, and the filled nose decoration from the
// classification. When no face is detected it draws the prompt instead.
func DrawFace(s *Surface, result *detector.Result, f classify.FaceFilter, ok bool) {
	if !ok || result.Empty() {
		DrawPrompt(s, "Show your face to the camera")
		return
	}

	face := &result.Sets[0]
	drawConnections(s, face, faceConnections, faceColor)
	for _, idx := range faceMarkers {
		gocv.Circle(s.Mat(), denormalize(face.Points[idx], s.width, s.height), markerRadius, faceColor, -1)
	}

	// Decoration: filled circle on the nose with a small highlight
	gocv.Circle(s.Mat(), f.Anchor, int(f.Radius), color.RGBA{R: 235, G: 80, B: 90, A: 255}, -1)
	highlight := image.Point{
		X: f.Anchor.X - int(f.Radius/3),
		Y: f.Anchor.Y - int(f.Radius/3),
	}
	gocv.Circle(s.Mat(), highlight, int(f.Radius/4)+1, labelColor, -1)
}

// DrawHand renders the hand-gesture overlay: the full hand skeleton for each
// detected hand plus the gesture banner with the live finger count. When no
// hand is detected it draws the prompt instead.
func DrawHand(s *Surface, result *detector.Result, g classify.HandGesture, ok bool) {
	if !ok || result.Empty() {
		DrawPrompt(s, "Show your hand to the camera")
		return
	}

	for i := range result.Sets {
		hand := &result.Sets[i]
		drawConnections(s, hand, handConnections, boneColor)
		for _, p := range hand.Points {
			gocv.Circle(s.Mat(), denormalize(p, s.width, s.height), markerRadius, handColor, -1)
		}
	}

	text := fmt.Sprintf("%s  [%d]", g.Label, g.ExtendedCount)
	drawBanner(s, text, image.Point{X: s.width / 2, Y: 40}, 1.0)
}

// DrawBody renders the body-pose overlay: the skeleton with region-coded
// markers and, on a victory pose, a full-frame glow border and banner. When
// no body is detected it draws the prompt instead.
func DrawBody(s *Surface, result *detector.Result, p classify.BodyPose, ok bool) {
	if !ok || result.Empty() {
		DrawPrompt(s, "Step back so your body is in view")
		return
	}

	body := &result.Sets[0]
	drawConnections(s, body, poseConnections, boneColor)
	for i, lm := range body.Points {
		gocv.Circle(s.Mat(), denormalize(lm, s.width, s.height), markerRadius, bodyRegionColor(i), -1)
	}

	if p.IsVictory {
		drawGlowBorder(s)
		drawBanner(s, "VICTORY", image.Point{X: s.width / 2, Y: 48}, 1.4)
	}
}

// DrawPrompt draws a centered instructional prompt for the no-subject case.
func DrawPrompt(s *Surface, text string) {
	drawBanner(s, text, image.Point{X: s.width / 2, Y: s.height / 2}, 0.7)
}

// bodyRegionColor picks the marker color by anatomical index range:
// head (0-10), arms and hands (11-22), legs (23-32).
func bodyRegionColor(index int) color.RGBA {
	switch {
	case index <= 10:
		return headColor
	case index <= 22:
		return armColor
	default:
		return legColor
	}
}

func denormalize(lm detector.Landmark, width, height int) image.Point {
	return image.Point{
		X: int(lm.X * float64(width)),
		Y: int(lm.Y * float64(height)),
	}
}

func drawConnections(s *Surface, set *detector.LandmarkSet, connections [][2]int, c color.RGBA) {
	for _, conn := range connections {
		if conn[0] >= len(set.Points) || conn[1] >= len(set.Points) {
			continue
		}
		a := denormalize(set.Points[conn[0]], s.width, s.height)
		b := denormalize(set.Points[conn[1]], s.width, s.height)
		gocv.Line(s.Mat(), a, b, c, boneThickness)
	}
}

// drawGlowBorder draws nested frame-edge rectangles fading outward.
func drawGlowBorder(s *Surface) {
	for i, c := range []color.RGBA{
		glowColor,
		{R: glowColor.R / 2, G: glowColor.G / 2, B: glowColor.B / 2, A: 255},
		{R: glowColor.R / 4, G: glowColor.G / 4, B: glowColor.B / 4, A: 255},
	} {
		inset := 4 + i*6
		rect := image.Rect(inset, inset, s.width-inset, s.height-inset)
		gocv.Rectangle(s.Mat(), rect, c, 4)
	}
}

// drawBanner draws a text label over a background box, centered horizontally
// on the given point. On a mirrored surface the whole banner is rendered
// into a scratch matrix, flipped, and blitted at the mirrored position so
// the text reads correctly after the final composite flip; skeleton and
// marker coordinates are deliberately left in the mirrored frame.
func drawBanner(s *Surface, text string, center image.Point, scale float64) {
	const pad = 10
	font := gocv.FontHersheySimplex
	thickness := 2

	size := gocv.GetTextSize(text, font, scale, thickness)
	boxW := size.X + 2*pad
	boxH := size.Y + 2*pad

	x0 := center.X - boxW/2
	y0 := center.Y - boxH/2
	textOrg := image.Point{X: pad, Y: pad + size.Y}

	if !s.mirrored {
		rect := image.Rect(x0, y0, x0+boxW, y0+boxH)
		gocv.Rectangle(s.Mat(), rect, bannerColor, -1)
		gocv.PutText(s.Mat(), text, image.Point{X: x0 + textOrg.X, Y: y0 + textOrg.Y}, font, scale, labelColor, thickness)
		return
	}

	scratch := gocv.NewMatWithSize(boxH, boxW, gocv.MatTypeCV8UC3)
	defer scratch.Close()
	scratch.SetTo(gocv.NewScalar(float64(bannerColor.B), float64(bannerColor.G), float64(bannerColor.R), 0))
	gocv.PutText(&scratch, text, textOrg, font, scale, labelColor, thickness)
	gocv.Flip(scratch, &scratch, 1)

	// Mirror the horizontal placement so the flip puts the banner back at
	// the intended on-screen position.
	mx0 := s.width - x0 - boxW
	dst := image.Rect(mx0, y0, mx0+boxW, y0+boxH)
	if dst.Min.X < 0 || dst.Min.Y < 0 || dst.Max.X > s.width || dst.Max.Y > s.height {
		return
	}
	region := s.mat.Region(dst)
	defer region.Close()
	scratch.CopyTo(&region)
}
