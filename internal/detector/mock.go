package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Fixture hands below are upright right hands with the wrist at (0.5, 0.8).
// Y grows downward, so an extended finger has its tip above (smaller Y) its MCP.

type fingerPose int

const (
	extended fingerPose = iota
	curled
)

type thumbPose int

const (
	thumbUp thumbPose = iota
	thumbSide
	thumbTucked
)

// fingerColumn holds the MCP position and length of one non-thumb finger.
type fingerColumn struct {
	mcp    Index
	x, y   float64
	length float64
}

var fingerColumns = []fingerColumn{
	{mcp: IndexMCP, x: 0.55, y: 0.68, length: 0.33},
	{mcp: MiddleMCP, x: 0.50, y: 0.66, length: 0.38},
	{mcp: RingMCP, x: 0.45, y: 0.68, length: 0.33},
	{mcp: PinkyMCP, x: 0.40, y: 0.70, length: 0.28},
}

func placeFinger(h *HandLandmarks, col fingerColumn, pose fingerPose) {
	h.Points[col.mcp] = Point3D{X: col.x, Y: col.y}

	switch pose {
	case extended:
		h.Points[col.mcp+1] = Point3D{X: col.x, Y: col.y - col.length*0.4}
		h.Points[col.mcp+2] = Point3D{X: col.x, Y: col.y - col.length*0.7}
		h.Points[col.mcp+3] = Point3D{X: col.x, Y: col.y - col.length}
	case curled:
		h.Points[col.mcp+1] = Point3D{X: col.x, Y: col.y - 0.02, Z: -0.06}
		h.Points[col.mcp+2] = Point3D{X: col.x - 0.01, Y: col.y, Z: -0.10}
		h.Points[col.mcp+3] = Point3D{X: col.x, Y: col.y + 0.02, Z: -0.12}
	}
}

func placeThumb(h *HandLandmarks, pose thumbPose) {
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75}

	switch pose {
	case thumbUp:
		h.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.65}
		h.Points[ThumbIP] = Point3D{X: 0.61, Y: 0.50}
		h.Points[ThumbTip] = Point3D{X: 0.62, Y: 0.38}
	case thumbSide:
		h.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
		h.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
		h.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}
	case thumbTucked:
		h.Points[ThumbMCP] = Point3D{X: 0.57, Y: 0.72, Z: -0.02}
		h.Points[ThumbIP] = Point3D{X: 0.56, Y: 0.70, Z: -0.04}
		h.Points[ThumbTip] = Point3D{X: 0.52, Y: 0.75, Z: -0.05}
	}
}

func buildHand(thumb thumbPose, index, middle, ring, pinky fingerPose) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	placeThumb(&h, thumb)
	for i, pose := range []fingerPose{index, middle, ring, pinky} {
		placeFinger(&h, fingerColumns[i], pose)
	}
	return h
}

// ThumbsUpLandmarks returns a thumb extended upward with the other fingers curled.
func ThumbsUpLandmarks() HandLandmarks {
	return buildHand(thumbUp, curled, curled, curled, curled)
}

// OpenPalmLandmarks returns all fingers extended with the thumb out to the side.
func OpenPalmLandmarks() HandLandmarks {
	return buildHand(thumbSide, extended, extended, extended, extended)
}

// FistLandmarks returns every finger curled with the thumb tucked over them.
func FistLandmarks() HandLandmarks {
	return buildHand(thumbTucked, curled, curled, curled, curled)
}

// VictoryLandmarks returns index and middle extended, ring and pinky curled.
func VictoryLandmarks() HandLandmarks {
	return buildHand(thumbTucked, extended, extended, curled, curled)
}

// PointingLandmarks returns only the index finger extended upward.
func PointingLandmarks() HandLandmarks {
	return buildHand(thumbTucked, extended, curled, curled, curled)
}

// RockLandmarks returns index and pinky extended, middle and ring curled.
func RockLandmarks() HandLandmarks {
	return buildHand(thumbTucked, extended, curled, curled, extended)
}

// GunLandmarks returns thumb and index extended with the rest curled.
func GunLandmarks() HandLandmarks {
	return buildHand(thumbUp, extended, curled, curled, curled)
}

// PhoneLandmarks returns thumb and pinky extended with the rest curled.
func PhoneLandmarks() HandLandmarks {
	return buildHand(thumbUp, curled, curled, curled, extended)
}

// OKSignLandmarks returns an open hand whose index tip touches the thumb tip.
func OKSignLandmarks() HandLandmarks {
	h := buildHand(thumbSide, extended, extended, extended, extended)
	h.Points[IndexPIP] = Point3D{X: 0.60, Y: 0.58}
	h.Points[IndexDIP] = Point3D{X: 0.63, Y: 0.57}
	h.Points[IndexTip] = Point3D{X: 0.72, Y: 0.61}
	return h
}

// PointingDownLandmarks returns a hand hanging from the top of the frame with
// the index finger pointing down and the other fingers folded back to the palm.
func PointingDownLandmarks() HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.9}
	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.3}

	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.33}
	h.Points[ThumbMCP] = Point3D{X: 0.57, Y: 0.37}
	h.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.40}
	h.Points[ThumbTip] = Point3D{X: 0.53, Y: 0.38}

	h.Points[IndexMCP] = Point3D{X: 0.52, Y: 0.42}
	h.Points[IndexPIP] = Point3D{X: 0.52, Y: 0.52}
	h.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.60}
	h.Points[IndexTip] = Point3D{X: 0.52, Y: 0.68}

	for _, col := range []struct {
		mcp Index
		x   float64
	}{{MiddleMCP, 0.48}, {RingMCP, 0.45}, {PinkyMCP, 0.42}} {
		h.Points[col.mcp] = Point3D{X: col.x, Y: 0.42}
		h.Points[col.mcp+1] = Point3D{X: col.x, Y: 0.50, Z: -0.05}
		h.Points[col.mcp+2] = Point3D{X: col.x, Y: 0.46, Z: -0.08}
		h.Points[col.mcp+3] = Point3D{X: col.x, Y: 0.40, Z: -0.10}
	}
	return h
}

// WithIndexTip returns a copy of h with the index fingertip moved to (x, y).
// Replay and pipeline tests use it to drive the swipe history.
func WithIndexTip(h HandLandmarks, x, y float64) HandLandmarks {
	h.Points[IndexTip].X = x
	h.Points[IndexTip].Y = y
	return h
}
