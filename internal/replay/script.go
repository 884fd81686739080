package replay

import (
	"fmt"
	"sort"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// Script builds a synthetic stream at a fixed frame rate.
type Script struct {
	interval time.Duration
	frames   []Frame
}

// NewScript starts an empty script at fps frames per second.
func NewScript(fps int) *Script {
	if fps <= 0 {
		fps = 15
	}
	return &Script{interval: time.Second / time.Duration(fps)}
}

// Hold appends n frames showing hand, or no hand when hand is nil.
func (s *Script) Hold(hand *detector.HandLandmarks, n int) *Script {
	for range n {
		f := Frame{Line: len(s.frames) + 1, T: time.Duration(len(s.frames)) * s.interval}
		if hand != nil {
			f.Hands = []detector.HandLandmarks{*hand}
		}
		s.frames = append(s.frames, f)
	}
	return s
}

// Frames returns the frames built so far.
func (s *Script) Frames() []Frame {
	return append([]Frame(nil), s.frames...)
}

// Shift returns h translated by (dx, dy) in normalized units.
func Shift(h detector.HandLandmarks, dx, dy float64) detector.HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// Scripted streams by name.
var scripts = map[string]func() *Script{
	// Swipe right, up (clamped at the top row), down, then thumbs up:
	// on a 3x3 menu this selects the centre cell.
	"menu": func() *Script {
		left := Shift(detector.OpenPalmLandmarks(), -0.25, 0)
		right := Shift(detector.OpenPalmLandmarks(), 0.2, 0)
		high := Shift(right, 0, -0.25)
		thumbs := detector.ThumbsUpLandmarks()
		return NewScript(15).
			Hold(nil, 5).
			Hold(&left, 1).
			Hold(&right, 15).
			Hold(&high, 12).
			Hold(&right, 12).
			Hold(&thumbs, 15).
			Hold(nil, 5)
	},
	// A thumbs up held for 20 frames inside one second.
	"thumbs": func() *Script {
		thumbs := detector.ThumbsUpLandmarks()
		return NewScript(20).Hold(&thumbs, 20)
	},
	// An open palm drifting left and back, never far enough to swipe.
	"idle": func() *Script {
		s := NewScript(15)
		for _, dx := range []float64{0, -0.05, -0.1, -0.05, 0, 0.05} {
			palm := Shift(detector.OpenPalmLandmarks(), dx, 0)
			s.Hold(&palm, 5)
		}
		return s
	},
}

// ScriptNames lists the scripted streams.
func ScriptNames() []string {
	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scripted returns the named synthetic stream.
func Scripted(name string) ([]Frame, error) {
	build, ok := scripts[name]
	if !ok {
		return nil, fmt.Errorf("unknown script %q", name)
	}
	return build().Frames(), nil
}
