// Package gesture classifies hand landmarks into discrete gesture labels.
package gesture

import "fmt"

// Label is a gesture name emitted once per processed frame.
type Label string

const (
	LabelNoHand     Label = "No Hand"
	LabelNoGesture  Label = "No Gesture"
	LabelThumbsUp   Label = "Thumbs Up"
	LabelOpenPalm   Label = "Open Palm"
	LabelSwipeLeft  Label = "Swipe Left"
	LabelSwipeRight Label = "Swipe Right"
	LabelSwipeUp    Label = "Swipe Up"
	LabelSwipeDown  Label = "Swipe Down"

	// Pose labels reported by Poses and Analyze.
	LabelFist         Label = "Fist"
	LabelFlatHand     Label = "Flat Hand"
	LabelVictory      Label = "Victory"
	LabelOKSign       Label = "OK Sign"
	LabelRockSign     Label = "Rock Sign"
	LabelPointing     Label = "Pointing"
	LabelPointingUp   Label = "Pointing Up"
	LabelPointingDown Label = "Pointing Down"
	LabelGunSign      Label = "Gun Sign"
	LabelPhone        Label = "Phone"
	LabelWaving       Label = "Waving"
	LabelGrab         Label = "Grab"
)

var allLabels = []Label{
	LabelNoHand, LabelNoGesture, LabelThumbsUp, LabelOpenPalm,
	LabelSwipeLeft, LabelSwipeRight, LabelSwipeUp, LabelSwipeDown,
	LabelFist, LabelFlatHand, LabelVictory, LabelOKSign, LabelRockSign,
	LabelPointing, LabelPointingUp, LabelPointingDown, LabelGunSign,
	LabelPhone, LabelWaving, LabelGrab,
}

// Labels returns every known label.
func Labels() []Label {
	out := make([]Label, len(allLabels))
	copy(out, allLabels)
	return out
}

// ParseLabel returns the Label whose name is s.
func ParseLabel(s string) (Label, error) {
	for _, l := range allLabels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown gesture label %q", s)
}

// IsSwipe reports whether l is one of the four swipe directions.
func (l Label) IsSwipe() bool {
	switch l {
	case LabelSwipeLeft, LabelSwipeRight, LabelSwipeUp, LabelSwipeDown:
		return true
	}
	return false
}

// IsDirectional reports whether l is an immediate, event-like gesture:
// thumbs up or a swipe.
func (l Label) IsDirectional() bool {
	return l == LabelThumbsUp || l.IsSwipe()
}

// IsIdle reports whether l carries no gesture.
func (l Label) IsIdle() bool {
	return l == "" || l == LabelNoGesture || l == LabelNoHand
}
