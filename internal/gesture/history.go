package gesture

// DefaultHistoryCapacity is the number of fingertip samples kept for swipe detection.
const DefaultHistoryCapacity = 10

// Position is a normalized (x, y) fingertip position.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// History is a bounded FIFO of recent index-fingertip positions.
//
// History has value semantics: Append returns a new History and never
// modifies the receiver, so a caller can keep an older snapshot around.
// The zero value is an empty history with DefaultHistoryCapacity.
type History struct {
	capacity int
	points   []Position
}

// NewHistory returns an empty history holding at most capacity samples.
// A capacity below 1 selects DefaultHistoryCapacity.
func NewHistory(capacity int) History {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return History{capacity: capacity}
}

// Capacity returns the maximum number of retained samples.
func (h History) Capacity() int {
	if h.capacity < 1 {
		return DefaultHistoryCapacity
	}
	return h.capacity
}

// Len returns the number of retained samples.
func (h History) Len() int {
	return len(h.points)
}

// Append returns a history with p added as the newest sample.
// When the history is full the oldest sample is evicted.
func (h History) Append(p Position) History {
	capacity := h.Capacity()

	drop := len(h.points) + 1 - capacity
	if drop < 0 {
		drop = 0
	}

	points := make([]Position, 0, len(h.points)+1-drop)
	points = append(points, h.points[drop:]...)
	points = append(points, p)

	return History{capacity: capacity, points: points}
}

// Oldest returns the oldest retained sample.
func (h History) Oldest() (Position, bool) {
	if len(h.points) == 0 {
		return Position{}, false
	}
	return h.points[0], true
}

// Newest returns the most recently appended sample.
func (h History) Newest() (Position, bool) {
	if len(h.points) == 0 {
		return Position{}, false
	}
	return h.points[len(h.points)-1], true
}

// Points returns a copy of the samples, oldest first.
func (h History) Points() []Position {
	out := make([]Position, len(h.points))
	copy(out, h.points)
	return out
}

// Reset returns an empty history with the same capacity.
func (h History) Reset() History {
	return History{capacity: h.Capacity()}
}

// endpoints returns the oldest and newest samples. ok is false with fewer than two samples.
func (h History) endpoints() (oldest, newest Position, ok bool) {
	if len(h.points) < 2 {
		return Position{}, Position{}, false
	}
	return h.points[0], h.points[len(h.points)-1], true
}
