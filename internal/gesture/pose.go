package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// Pose thresholds in normalized image units.
const (
	FistRadius     = 0.3
	FlatDepth      = 0.1
	OKSignDistance = 0.05
	WaveOffset     = 0.2
	GrabRadius     = 0.1
)

// Pose predicates are independent of the classifier priority chain. Several
// can hold for the same hand; Poses reports all of them.

// ThumbsUp reports a thumb pointing up with the other four fingers folded below their PIP joints.
func ThumbsUp(h *detector.HandLandmarks) bool {
	thumb := fingerJoints[Thumb]
	if h.At(thumb.Tip).Y >= h.At(thumb.PIP).Y {
		return false
	}
	for _, f := range nonThumb {
		j := fingerJoints[f]
		if h.At(j.Tip).Y <= h.At(j.PIP).Y {
			return false
		}
	}
	return true
}

// OpenPalm reports all four non-thumb tips above their MCP joints.
func OpenPalm(h *detector.HandLandmarks) bool {
	for _, f := range nonThumb {
		if !Extended(h, f) {
			return false
		}
	}
	return true
}

// Fist reports every fingertip within FistRadius of the wrist.
func Fist(h *detector.HandLandmarks) bool {
	wrist := h.At(detector.Wrist)
	for _, f := range Fingers {
		if dist2(h.At(fingerJoints[f].Tip), wrist) >= FistRadius {
			return false
		}
	}
	return true
}

// FlatHand reports every fingertip within FlatDepth of the wrist depth.
func FlatHand(h *detector.HandLandmarks) bool {
	wrist := h.At(detector.Wrist)
	for _, f := range Fingers {
		if math.Abs(h.At(fingerJoints[f].Tip).Z-wrist.Z) >= FlatDepth {
			return false
		}
	}
	return true
}

// Victory reports index and middle extended with ring and pinky curled.
func Victory(h *detector.HandLandmarks) bool {
	return Extended(h, Index) && Extended(h, Middle) && Curled(h, Ring) && Curled(h, Pinky)
}

// OKSign reports the thumb and index tips touching.
func OKSign(h *detector.HandLandmarks) bool {
	return dist2(h.At(detector.ThumbTip), h.At(detector.IndexTip)) < OKSignDistance
}

// RockSign reports index and pinky extended with middle and ring curled.
func RockSign(h *detector.HandLandmarks) bool {
	return Extended(h, Index) && Extended(h, Pinky) && Curled(h, Middle) && Curled(h, Ring)
}

// Pointing reports only the index finger extended. The thumb is ignored.
func Pointing(h *detector.HandLandmarks) bool {
	return Extended(h, Index) && Curled(h, Middle) && Curled(h, Ring) && Curled(h, Pinky)
}

// PointingUp reports a straight index finger aimed up, the rest folded into the palm.
func PointingUp(h *detector.HandLandmarks) bool {
	dy, ok := pointingAxis(h)
	return ok && dy < 0
}

// PointingDown reports a straight index finger aimed down, the rest folded into the palm.
func PointingDown(h *detector.HandLandmarks) bool {
	dy, ok := pointingAxis(h)
	return ok && dy > 0
}

// pointingAxis returns the vertical component of the index finger when it is
// straight, mostly vertical, and the only finger not folded toward the wrist.
func pointingAxis(h *detector.HandLandmarks) (float64, bool) {
	if !straight(h, Index) {
		return 0, false
	}
	for _, f := range []Finger{Middle, Ring, Pinky} {
		if !folded(h, f) {
			return 0, false
		}
	}
	tip, mcp := h.At(detector.IndexTip), h.At(detector.IndexMCP)
	dx, dy := tip.X-mcp.X, tip.Y-mcp.Y
	if math.Abs(dy) < math.Abs(dx) {
		return 0, false
	}
	return dy, true
}

// GunSign reports thumb and index extended with the rest curled.
func GunSign(h *detector.HandLandmarks) bool {
	return Extended(h, Thumb) && Pointing(h)
}

// PhoneSign reports thumb and pinky extended with the rest curled.
func PhoneSign(h *detector.HandLandmarks) bool {
	return Extended(h, Thumb) && Extended(h, Pinky) &&
		Curled(h, Index) && Curled(h, Middle) && Curled(h, Ring)
}

// Waving reports every fingertip more than WaveOffset right of the wrist.
func Waving(h *detector.HandLandmarks) bool {
	wrist := h.At(detector.Wrist)
	for _, f := range Fingers {
		if h.At(fingerJoints[f].Tip).X <= wrist.X+WaveOffset {
			return false
		}
	}
	return true
}

// Grab reports the four fingertips closed around the thumb tip.
// Depth counts here: a flat pinch seen edge-on is not a grab.
func Grab(h *detector.HandLandmarks) bool {
	thumb := h.At(detector.ThumbTip)
	for _, f := range nonThumb {
		if dist3(h.At(fingerJoints[f].Tip), thumb) >= GrabRadius {
			return false
		}
	}
	return true
}

var poses = []struct {
	label Label
	match func(*detector.HandLandmarks) bool
}{
	{LabelThumbsUp, ThumbsUp},
	{LabelOpenPalm, OpenPalm},
	{LabelFist, Fist},
	{LabelFlatHand, FlatHand},
	{LabelVictory, Victory},
	{LabelOKSign, OKSign},
	{LabelRockSign, RockSign},
	{LabelPointing, Pointing},
	{LabelPointingUp, PointingUp},
	{LabelPointingDown, PointingDown},
	{LabelGunSign, GunSign},
	{LabelPhone, PhoneSign},
	{LabelWaving, Waving},
	{LabelGrab, Grab},
}

// Poses returns every static pose label that matches h, in a fixed order.
func Poses(h *detector.HandLandmarks) []Label {
	var out []Label
	for _, p := range poses {
		if p.match(h) {
			out = append(out, p.label)
		}
	}
	return out
}

// Analysis is a per-frame breakdown of a hand for overlays and debugging.
type Analysis struct {
	Extended [NumFingers]bool    `json:"extended"`
	Curled   [NumFingers]bool    `json:"curled"`
	Angles   [NumFingers]float64 `json:"angles"`
	Poses    []Label             `json:"poses"`
}

// Analyze computes finger flags, joint angles and matching poses for h.
func Analyze(h *detector.HandLandmarks) Analysis {
	var a Analysis
	for _, f := range Fingers {
		a.Extended[f] = Extended(h, f)
		a.Curled[f] = Curled(h, f)
		a.Angles[f] = JointAngle(h, f)
	}
	a.Poses = Poses(h)
	return a
}
