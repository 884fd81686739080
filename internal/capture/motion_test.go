package capture

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestMotionGate_FirstFrameCounts(t *testing.T) {
	g := NewMotionGate(1.0)
	defer g.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	changed, pct := g.Changed(&frame)
	if !changed || pct != 100 {
		t.Errorf("first frame: Changed() = %v, %f; want true, 100", changed, pct)
	}
}

func TestMotionGate_StillScene(t *testing.T) {
	g := NewMotionGate(1.0)
	defer g.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	g.Changed(&frame)
	changed, pct := g.Changed(&frame)
	if changed {
		t.Errorf("identical frames reported motion, pct = %f", pct)
	}
}

func TestMotionGate_Movement(t *testing.T) {
	g := NewMotionGate(1.0)
	defer g.Close()

	black := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer black.Close()

	bright := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer bright.Close()
	gocv.Rectangle(&bright, image.Rect(100, 100, 400, 400), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	g.Changed(&black)
	changed, pct := g.Changed(&bright)
	if !changed {
		t.Errorf("large bright block should count as motion, pct = %f", pct)
	}
}

func TestMotionGate_Reset(t *testing.T) {
	g := NewMotionGate(1.0)
	defer g.Close()

	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	g.Changed(&frame)
	g.Reset()
	if changed, _ := g.Changed(&frame); !changed {
		t.Error("frame after Reset should count as changed")
	}
}

func TestMotionGate_NilFrame(t *testing.T) {
	g := NewMotionGate(1.0)
	defer g.Close()

	if changed, pct := g.Changed(nil); changed || pct != 0 {
		t.Errorf("Changed(nil) = %v, %f; want false, 0", changed, pct)
	}
}
