package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion gate tuning.
const (
	motionWidth     = 160
	motionHeight    = 120
	motionBlur      = 11
	motionPixelDiff = 25
)

// MotionGate reports whether a frame differs enough from the previous one to
// be worth running the hand detector on. Frames are compared on a small
// blurred grayscale copy.
type MotionGate struct {
	mu        sync.Mutex
	threshold float64 // Percent of changed pixels
	prev      gocv.Mat
	primed    bool
}

// NewMotionGate returns a gate that opens when more than threshold percent of
// pixels change between frames.
func NewMotionGate(threshold float64) *MotionGate {
	return &MotionGate{threshold: threshold, prev: gocv.NewMat()}
}

// Changed compares frame with the previous call. The first frame always counts
// as changed. It returns the decision and the changed-pixel percentage.
func (g *MotionGate) Changed(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(*frame, &small, image.Pt(motionWidth, motionHeight), 0, 0, gocv.InterpolationArea)

	if small.Channels() > 1 {
		gocv.CvtColor(small, &small, gocv.ColorBGRToGray)
	}
	gocv.GaussianBlur(small, &small, image.Pt(motionBlur, motionBlur), 0, 0, gocv.BorderDefault)

	if !g.primed {
		small.CopyTo(&g.prev)
		g.primed = true
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(small, g.prev, &diff)
	gocv.Threshold(diff, &diff, motionPixelDiff, 255, gocv.ThresholdBinary)

	pct := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	small.CopyTo(&g.prev)

	return pct > g.threshold, pct
}

// Reset forgets the previous frame so the next one counts as changed.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.primed = false
}

// Close releases the stored frame.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prev.Close()
	g.primed = false
}
