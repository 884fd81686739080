package gesture

// Swipe thresholds in normalized image units.
const (
	DefaultSwipeThreshold   = 0.2
	SensitiveSwipeThreshold = 0.05
)

// Swipe predicates compare only the oldest and newest samples in the window.
// Intermediate samples are ignored, so a hand that doubles back inside the
// window still swipes if its endpoints are far enough apart.

// SwipeLeft reports whether the fingertip moved left by more than threshold.
func SwipeLeft(h History, threshold float64) bool {
	oldest, newest, ok := h.endpoints()
	return ok && newest.X < oldest.X-threshold
}

// SwipeRight reports whether the fingertip moved right by more than threshold.
func SwipeRight(h History, threshold float64) bool {
	oldest, newest, ok := h.endpoints()
	return ok && newest.X > oldest.X+threshold
}

// SwipeUp reports whether the fingertip moved up by more than threshold.
func SwipeUp(h History, threshold float64) bool {
	oldest, newest, ok := h.endpoints()
	return ok && newest.Y < oldest.Y-threshold
}

// SwipeDown reports whether the fingertip moved down by more than threshold.
func SwipeDown(h History, threshold float64) bool {
	oldest, newest, ok := h.endpoints()
	return ok && newest.Y > oldest.Y+threshold
}

// swipes lists the swipe directions in evaluation order.
var swipes = []struct {
	label Label
	match func(History, float64) bool
}{
	{LabelSwipeLeft, SwipeLeft},
	{LabelSwipeRight, SwipeRight},
	{LabelSwipeUp, SwipeUp},
	{LabelSwipeDown, SwipeDown},
}

// DetectSwipe returns the first matching swipe in left, right, up, down order.
func DetectSwipe(h History, threshold float64) (Label, bool) {
	for _, s := range swipes {
		if s.match(h, threshold) {
			return s.label, true
		}
	}
	return "", false
}
