package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func historyOf(points ...Position) History {
	h := NewHistory(DefaultHistoryCapacity)
	for _, p := range points {
		h = h.Append(p)
	}
	return h
}

func TestSwipes_NeedTwoSamples(t *testing.T) {
	for _, h := range []History{historyOf(), historyOf(Position{X: 0.9, Y: 0.9})} {
		assert.False(t, SwipeLeft(h, 0.0001))
		assert.False(t, SwipeRight(h, 0.0001))
		assert.False(t, SwipeUp(h, 0.0001))
		assert.False(t, SwipeDown(h, 0.0001))

		_, ok := DetectSwipe(h, 0.0001)
		assert.False(t, ok)
	}
}

func TestSwipes_Directions(t *testing.T) {
	tests := []struct {
		name   string
		points []Position
		want   Label
	}{
		{"left", []Position{{0.6, 0.5}, {0.3, 0.5}}, LabelSwipeLeft},
		{"right", []Position{{0.3, 0.5}, {0.6, 0.5}}, LabelSwipeRight},
		{"up", []Position{{0.5, 0.7}, {0.5, 0.4}}, LabelSwipeUp},
		{"down", []Position{{0.5, 0.2}, {0.5, 0.5}}, LabelSwipeDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := historyOf(tt.points...)

			assert.Equal(t, tt.want == LabelSwipeLeft, SwipeLeft(h, DefaultSwipeThreshold))
			assert.Equal(t, tt.want == LabelSwipeRight, SwipeRight(h, DefaultSwipeThreshold))
			assert.Equal(t, tt.want == LabelSwipeUp, SwipeUp(h, DefaultSwipeThreshold))
			assert.Equal(t, tt.want == LabelSwipeDown, SwipeDown(h, DefaultSwipeThreshold))

			got, ok := DetectSwipe(h, DefaultSwipeThreshold)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSwipes_ThresholdIsStrict(t *testing.T) {
	// 0.75 - 0.25 is exact in binary, so this sits precisely on the boundary.
	h := historyOf(Position{X: 0.75}, Position{X: 0.5})
	assert.False(t, SwipeLeft(h, 0.25))
	assert.True(t, SwipeLeft(h, 0.125))
}

func TestSwipes_OnlyEndpointsCount(t *testing.T) {
	// The hand wanders right and back, but ends left of where it started.
	h := historyOf(
		Position{X: 0.7, Y: 0.5},
		Position{X: 0.95, Y: 0.5},
		Position{X: 0.1, Y: 0.9},
		Position{X: 0.4, Y: 0.5},
	)

	assert.True(t, SwipeLeft(h, DefaultSwipeThreshold))
	assert.False(t, SwipeRight(h, DefaultSwipeThreshold))
	assert.False(t, SwipeDown(h, DefaultSwipeThreshold))
}

func TestDetectSwipe_HorizontalFirst(t *testing.T) {
	// Diagonal up-left: both left and up hold, left is checked first.
	h := historyOf(Position{X: 0.8, Y: 0.8}, Position{X: 0.2, Y: 0.2})

	assert.True(t, SwipeUp(h, DefaultSwipeThreshold))
	got, ok := DetectSwipe(h, DefaultSwipeThreshold)
	assert.True(t, ok)
	assert.Equal(t, LabelSwipeLeft, got)
}

func TestSwipes_SensitiveThreshold(t *testing.T) {
	h := historyOf(Position{X: 0.5}, Position{X: 0.4})

	assert.False(t, SwipeLeft(h, DefaultSwipeThreshold))
	assert.True(t, SwipeLeft(h, SensitiveSwipeThreshold))
}
