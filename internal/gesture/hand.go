package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Finger identifies one digit of the hand.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

// NumFingers is the number of digits on a hand.
const NumFingers = 5

// Fingers lists the digits thumb first.
var Fingers = [NumFingers]Finger{Thumb, Index, Middle, Ring, Pinky}

// nonThumb lists the four fingers compared against their own joints.
var nonThumb = []Finger{Index, Middle, Ring, Pinky}

func (f Finger) String() string {
	switch f {
	case Thumb:
		return "Thumb"
	case Index:
		return "Index"
	case Middle:
		return "Middle"
	case Ring:
		return "Ring"
	case Pinky:
		return "Pinky"
	}
	return "Finger(?)"
}

// Joints names the landmarks along one finger, palm to tip.
// For the thumb, MCP is the thumb MCP and both PIP and DIP map to the IP joint.
type Joints struct {
	MCP, PIP, DIP, Tip detector.Index
}

var fingerJoints = [NumFingers]Joints{
	Thumb:  {detector.ThumbMCP, detector.ThumbIP, detector.ThumbIP, detector.ThumbTip},
	Index:  {detector.IndexMCP, detector.IndexPIP, detector.IndexDIP, detector.IndexTip},
	Middle: {detector.MiddleMCP, detector.MiddlePIP, detector.MiddleDIP, detector.MiddleTip},
	Ring:   {detector.RingMCP, detector.RingPIP, detector.RingDIP, detector.RingTip},
	Pinky:  {detector.PinkyMCP, detector.PinkyPIP, detector.PinkyDIP, detector.PinkyTip},
}

// JointsOf returns the landmark indices of finger f.
func JointsOf(f Finger) Joints {
	return fingerJoints[f]
}

// Extended reports whether the tip of f is above its MCP joint.
func Extended(h *detector.HandLandmarks, f Finger) bool {
	j := fingerJoints[f]
	return h.At(j.Tip).Y < h.At(j.MCP).Y
}

// Curled reports whether the tip of f is below its MCP joint.
// A tip level with the MCP is neither extended nor curled.
func Curled(h *detector.HandLandmarks, f Finger) bool {
	j := fingerJoints[f]
	return h.At(j.Tip).Y > h.At(j.MCP).Y
}

// straight and folded test a finger against the wrist instead of image Y, so
// they work for a hand held in any orientation.
func straight(h *detector.HandLandmarks, f Finger) bool {
	j := fingerJoints[f]
	return dist2(h.At(j.Tip), h.At(detector.Wrist)) > dist2(h.At(j.PIP), h.At(detector.Wrist))
}

func folded(h *detector.HandLandmarks, f Finger) bool {
	j := fingerJoints[f]
	return dist2(h.At(j.Tip), h.At(detector.Wrist)) < dist2(h.At(j.PIP), h.At(detector.Wrist))
}

// JointAngle returns the angle in degrees at the middle joint of f, measured
// between the tip and the MCP. The thumb bends at its IP joint, the other
// fingers at the DIP. The sign is discarded, so flexion and hyperextension
// report the same magnitude; the result lies in [0, 360).
func JointAngle(h *detector.HandLandmarks, f Finger) float64 {
	j := fingerJoints[f]
	return Angle(h.At(j.Tip), h.At(j.DIP), h.At(j.MCP))
}

// Angle returns |atan2(c-b) - atan2(a-b)| in degrees, using X and Y only.
func Angle(a, b, c detector.Point3D) float64 {
	rad := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	return math.Abs(rad * 180 / math.Pi)
}

func planar(p detector.Point3D) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// dist2 is the planar distance between two landmarks.
func dist2(a, b detector.Point3D) float64 {
	return r2.Norm(r2.Sub(planar(a), planar(b)))
}

// dist3 is the Euclidean distance between two landmarks including depth.
func dist3(a, b detector.Point3D) float64 {
	return r3.Norm(r3.Sub(r3.Vec{X: a.X, Y: a.Y, Z: a.Z}, r3.Vec{X: b.X, Y: b.Y, Z: b.Z}))
}

// IndexTipPosition returns the tracked fingertip used for swipes and cursor tracking.
func IndexTipPosition(h *detector.HandLandmarks) Position {
	tip := h.At(detector.IndexTip)
	return Position{X: tip.X, Y: tip.Y}
}
