package gesture

import (
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
)

// Config holds the classifier tunables.
type Config struct {
	SwipeThreshold  float64 // Minimum endpoint displacement for a swipe
	HistoryCapacity int     // Fingertip samples kept for swipe detection
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		SwipeThreshold:  DefaultSwipeThreshold,
		HistoryCapacity: DefaultHistoryCapacity,
	}
}

// SensitiveConfig returns a preset that fires swipes on much shorter movements.
func SensitiveConfig() Config {
	cfg := DefaultConfig()
	cfg.SwipeThreshold = SensitiveSwipeThreshold
	return cfg
}

// Validate reports a configuration the classifier cannot run with.
func (c Config) Validate() error {
	if c.SwipeThreshold <= 0 {
		return fmt.Errorf("swipe threshold must be positive, got %g", c.SwipeThreshold)
	}
	if c.HistoryCapacity < 2 {
		return fmt.Errorf("history capacity must be at least 2, got %d", c.HistoryCapacity)
	}
	return nil
}

// Input is what a rule sees. History already contains the current fingertip.
type Input struct {
	Hand           *detector.HandLandmarks
	History        History
	SwipeThreshold float64
}

// Rule is one entry of the classification chain.
type Rule struct {
	Name  string
	Label Label
	Match func(Input) bool
}

func gatedSwipe(swipe func(History, float64) bool) func(Input) bool {
	return func(in Input) bool {
		return OpenPalm(in.Hand) && swipe(in.History, in.SwipeThreshold)
	}
}

// rules is evaluated top to bottom; the first match wins. Swipes only count
// while the palm is open, so a closed hand moving across the frame is ignored.
var rules = []Rule{
	{Name: "thumbs-up", Label: LabelThumbsUp, Match: func(in Input) bool { return ThumbsUp(in.Hand) }},
	{Name: "swipe-left", Label: LabelSwipeLeft, Match: gatedSwipe(SwipeLeft)},
	{Name: "swipe-right", Label: LabelSwipeRight, Match: gatedSwipe(SwipeRight)},
	{Name: "swipe-up", Label: LabelSwipeUp, Match: gatedSwipe(SwipeUp)},
	{Name: "swipe-down", Label: LabelSwipeDown, Match: gatedSwipe(SwipeDown)},
	{Name: "open-palm", Label: LabelOpenPalm, Match: func(in Input) bool { return OpenPalm(in.Hand) }},
}

// Classifier maps one hand plus its fingertip history to a single label.
// It holds only configuration; history is threaded through by the caller.
type Classifier struct {
	config Config
}

// NewClassifier creates a classifier. Zero fields in cfg take their defaults.
func NewClassifier(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.SwipeThreshold <= 0 {
		cfg.SwipeThreshold = def.SwipeThreshold
	}
	if cfg.HistoryCapacity < 1 {
		cfg.HistoryCapacity = def.HistoryCapacity
	}
	return &Classifier{config: cfg}
}

// Config returns the effective configuration.
func (c *Classifier) Config() Config {
	return c.config
}

// NewHistory returns an empty history sized for this classifier.
func (c *Classifier) NewHistory() History {
	return NewHistory(c.config.HistoryCapacity)
}

// Rules returns the classification chain in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify appends the index fingertip of hand to history and returns the
// first matching label along with the updated history. A nil hand yields
// LabelNoHand and leaves history untouched.
func (c *Classifier) Classify(hand *detector.HandLandmarks, history History) (Label, History) {
	if hand == nil {
		return LabelNoHand, history
	}

	history = history.Append(IndexTipPosition(hand))
	in := Input{Hand: hand, History: history, SwipeThreshold: c.config.SwipeThreshold}

	for _, r := range rules {
		if r.Match(in) {
			return r.Label, history
		}
	}
	return LabelNoGesture, history
}
