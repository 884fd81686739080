// Package stabilizer turns the per-frame classifier output into a steady
// display label and discrete actions.
package stabilizer

import (
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Policy selects how raw labels are debounced.
type Policy string

const (
	// PolicyHold keeps the last directional gesture on screen for HoldDuration.
	PolicyHold Policy = "hold"
	// PolicyCooldown shows the raw label and rate-limits selections.
	PolicyCooldown Policy = "cooldown"
)

// ParsePolicy returns the Policy named s.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyHold, PolicyCooldown:
		return p, nil
	}
	return "", fmt.Errorf("unknown stabilizer policy %q", s)
}

// Config holds the stabilizer timers.
type Config struct {
	Policy            Policy
	HoldDuration      time.Duration
	SelectionCooldown time.Duration
	SelectLabel       gesture.Label // Label that triggers a selection under PolicyCooldown
}

// DefaultConfig returns the hold policy with one-second timers.
func DefaultConfig() Config {
	return Config{
		Policy:            PolicyHold,
		HoldDuration:      time.Second,
		SelectionCooldown: time.Second,
		SelectLabel:       gesture.LabelThumbsUp,
	}
}

// Validate reports a configuration the stabilizer cannot run with.
func (c Config) Validate() error {
	if _, err := ParsePolicy(string(c.Policy)); err != nil {
		return err
	}
	if c.HoldDuration < 0 {
		return fmt.Errorf("hold duration must not be negative, got %s", c.HoldDuration)
	}
	if c.SelectionCooldown < 0 {
		return fmt.Errorf("selection cooldown must not be negative, got %s", c.SelectionCooldown)
	}
	if c.SelectLabel.IsIdle() {
		return fmt.Errorf("select label must name a gesture, got %q", c.SelectLabel)
	}
	return nil
}

// State is the only memory kept between frames. The zero value means no
// gesture has been seen.
type State struct {
	LastGesture       gesture.Label `json:"lastGesture"`
	LastGestureTime   time.Time     `json:"lastGestureTime"`
	LastSelectionTime time.Time     `json:"lastSelectionTime"`
}

// Output is the result of one stabilization step.
type Output struct {
	Label  gesture.Label `json:"label"`            // What to display this frame
	Action gesture.Label `json:"action,omitempty"` // Set on the frame a gesture should take effect
}

// Stabilizer applies a Policy. It is stateless; State is threaded by the caller.
type Stabilizer struct {
	config Config
}

// New creates a stabilizer. An empty Policy or SelectLabel takes its default.
func New(cfg Config) *Stabilizer {
	def := DefaultConfig()
	if cfg.Policy == "" {
		cfg.Policy = def.Policy
	}
	if cfg.SelectLabel == "" {
		cfg.SelectLabel = def.SelectLabel
	}
	return &Stabilizer{config: cfg}
}

// Config returns the effective configuration.
func (s *Stabilizer) Config() Config {
	return s.config
}

// Stabilize folds raw into state at time now.
func (s *Stabilizer) Stabilize(raw gesture.Label, state State, now time.Time) (Output, State) {
	if raw == gesture.LabelNoHand || raw == "" {
		raw = gesture.LabelNoGesture
	}

	if s.config.Policy == PolicyCooldown {
		return s.cooldown(raw, state, now)
	}
	return s.hold(raw, state, now)
}

func (s *Stabilizer) hold(raw gesture.Label, state State, now time.Time) (Output, State) {
	elapsed := now.Sub(state.LastGestureTime)

	if raw.IsDirectional() {
		out := Output{Label: raw}
		if raw != state.LastGesture || elapsed > s.config.HoldDuration {
			state.LastGesture = raw
			state.LastGestureTime = now
			out.Action = raw
		}
		return out, state
	}

	if !state.LastGesture.IsIdle() && elapsed <= s.config.HoldDuration {
		return Output{Label: state.LastGesture}, state
	}
	return Output{Label: raw}, state
}

func (s *Stabilizer) cooldown(raw gesture.Label, state State, now time.Time) (Output, State) {
	out := Output{Label: raw}

	switch {
	case raw == s.config.SelectLabel:
		if now.Sub(state.LastSelectionTime) > s.config.SelectionCooldown {
			state.LastSelectionTime = now
			state.LastGesture = raw
			state.LastGestureTime = now
			out.Action = raw
		}
	case raw.IsSwipe():
		if raw != state.LastGesture || now.Sub(state.LastGestureTime) > s.config.SelectionCooldown {
			state.LastGesture = raw
			state.LastGestureTime = now
			out.Action = raw
		}
	}
	return out, state
}
