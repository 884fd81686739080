package capture

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	gestureColor = color.RGBA{R: 255, A: 255}
	handColor    = color.RGBA{G: 255, A: 255}
	infoColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Overlay is the text drawn over a preview frame.
type Overlay struct {
	Gesture      string
	HandDetected bool
	Lines        []string // Extra lines below the status, e.g. menu cursor
}

// Lines are placed at these baselines, in pixels from the top-left corner.
const (
	overlayLeft = 10
	gestureTop  = 50
	handTop     = 80
	lineTop     = 110
	lineSpacing = 20
)

// Annotate draws o onto frame in place.
func Annotate(frame *gocv.Mat, o Overlay) {
	if frame == nil || frame.Empty() {
		return
	}

	gocv.PutText(frame, fmt.Sprintf("Gesture: %s", o.Gesture),
		image.Pt(overlayLeft, gestureTop), gocv.FontHersheySimplex, 1, gestureColor, 2)

	if o.HandDetected {
		gocv.PutText(frame, "Hand Detected",
			image.Pt(overlayLeft, handTop), gocv.FontHersheySimplex, 0.5, handColor, 1)
	}

	for i, line := range o.Lines {
		gocv.PutText(frame, line,
			image.Pt(overlayLeft, lineTop+i*lineSpacing), gocv.FontHersheySimplex, 0.5, infoColor, 1)
	}
}
