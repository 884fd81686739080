// Package detector provides hand detection interfaces and types for gesture recognition.
package detector

import (
	"errors"
	"fmt"
)

// Index identifies one of the 21 hand landmarks.
// Values follow the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
type Index int

const (
	Wrist Index = iota
	ThumbCMC
	ThumbMCP
	ThumbIP
	ThumbTip
	IndexMCP
	IndexPIP
	IndexDIP
	IndexTip
	MiddleMCP
	MiddlePIP
	MiddleDIP
	MiddleTip
	RingMCP
	RingPIP
	RingDIP
	RingTip
	PinkyMCP
	PinkyPIP
	PinkyDIP
	PinkyTip
)

// NumLandmarks is the number of points in a hand skeleton.
const NumLandmarks = 21

var indexNames = [NumLandmarks]string{
	"wrist",
	"thumb_cmc", "thumb_mcp", "thumb_ip", "thumb_tip",
	"index_mcp", "index_pip", "index_dip", "index_tip",
	"middle_mcp", "middle_pip", "middle_dip", "middle_tip",
	"ring_mcp", "ring_pip", "ring_dip", "ring_tip",
	"pinky_mcp", "pinky_pip", "pinky_dip", "pinky_tip",
}

// String returns the anatomical name of the landmark.
func (i Index) String() string {
	if i < 0 || int(i) >= NumLandmarks {
		return fmt.Sprintf("Index(%d)", int(i))
	}
	return indexNames[i]
}

// ErrLandmarkCount is returned when a hand does not carry exactly NumLandmarks points.
var ErrLandmarkCount = errors.New("hand must have exactly 21 landmarks")

// Point3D represents a landmark in normalized image coordinates.
// X and Y are in [0,1]; Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks of one detected hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// At returns the landmark at index i.
func (h *HandLandmarks) At(i Index) Point3D {
	return h.Points[i]
}

// RawHand is a decoded hand whose point count has not been checked yet.
// It is the wire form used by the MediaPipe service and replay streams.
type RawHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

// ToLandmarks converts the raw hand into HandLandmarks.
// The point sequence is copied in order; any count other than NumLandmarks is rejected.
func (r RawHand) ToLandmarks() (HandLandmarks, error) {
	if len(r.Points) != NumLandmarks {
		return HandLandmarks{}, fmt.Errorf("got %d points: %w", len(r.Points), ErrLandmarkCount)
	}

	lm := HandLandmarks{
		Handedness: r.Handedness,
		Score:      r.Score,
	}
	copy(lm.Points[:], r.Points)

	return lm, nil
}
