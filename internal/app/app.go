// Package app wires the classifier, stabilizer and menu into the per-frame
// gesture pipeline and drives it from the camera.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/menu"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/stabilizer"
	"github.com/ayusman/mudra/internal/store"
)

// subscriberBuffer is how many events a slow subscriber may fall behind
// before events are dropped for it.
const subscriberBuffer = 64

// Config holds the collaborators and tunables of an App. Camera, Detector,
// Store and Runner are optional: without a camera only Process is usable,
// without a store nothing is persisted, without a runner no plugin runs.
type Config struct {
	Logger     zerolog.Logger
	Classifier gesture.Config
	Stabilizer stabilizer.Config
	Menu       menu.Config

	Camera          capture.Camera
	Detector        detector.Detector
	Async           bool    // Run detection on a background worker
	MotionThreshold float64 // Percent of changed pixels needed to run detection; 0 disables

	Store  *store.Store
	Runner *plugin.Runner
	Source string // Session source recorded in the store (default camera)
}

// Event is the pipeline output for one processed frame.
type Event struct {
	Frame       int64             `json:"frame"`
	At          time.Time         `json:"at"`
	HandPresent bool              `json:"handPresent"`
	Raw         gesture.Label     `json:"raw"`
	Label       gesture.Label     `json:"label"`
	Action      gesture.Label     `json:"action,omitempty"`
	Cursor      menu.Cell         `json:"cursor"`
	Selection   *menu.Selection   `json:"selection,omitempty"`
	Position    *gesture.Position `json:"position,omitempty"`
	Poses       []gesture.Label   `json:"poses,omitempty"`
}

// App is the gesture pipeline. Process is the single writer of the position
// history and stabilizer state.
type App struct {
	config     Config
	log        zerolog.Logger
	classifier *gesture.Classifier
	stabilizer *stabilizer.Stabilizer
	navigator  *menu.Navigator
	metrics    *metrics

	mu      sync.Mutex
	history gesture.History
	state   stabilizer.State
	frame   int64
	latest  Event
	session *store.Session

	subMu sync.Mutex
	subs  map[chan Event]struct{}

	frameMu   sync.Mutex
	lastFrame *gocv.Mat

	runMu  sync.Mutex
	stopCh chan struct{}
	done   chan struct{}

	ctx    context.Context // Cancelled by Close; bounds plugin runs
	cancel context.CancelFunc
	jobs   sync.WaitGroup
}

// New validates config and builds an App.
func New(config Config) (*App, error) {
	if config.Stabilizer == (stabilizer.Config{}) {
		config.Stabilizer = stabilizer.DefaultConfig()
	}
	if config.Menu.Rows == 0 && config.Menu.Cols == 0 {
		items := config.Menu.Items
		config.Menu = menu.DefaultConfig()
		config.Menu.Items = items
	}
	if config.Source == "" {
		config.Source = store.SourceCamera
	}

	classifier := gesture.NewClassifier(config.Classifier)
	stab := stabilizer.New(config.Stabilizer)
	if err := errors.Join(
		classifier.Config().Validate(),
		stab.Config().Validate(),
		config.Menu.Validate(),
	); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}

	m, err := newMetrics()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		ctx:        ctx,
		cancel:     cancel,
		config:     config,
		log:        config.Logger.With().Str("component", "app").Logger(),
		classifier: classifier,
		stabilizer: stab,
		navigator:  menu.NewNavigator(menu.NewGrid(config.Menu), stab.Config().SelectLabel),
		metrics:    m,
		history:    classifier.NewHistory(),
		subs:       make(map[chan Event]struct{}),
	}, nil
}

// Process runs one frame's worth of hands through the pipeline at time now
// and returns the resulting event. Only the first hand is classified; no
// hands means the classifier is skipped and the stabilizer sees No Gesture.
func (a *App) Process(hands []detector.HandLandmarks, now time.Time) Event {
	a.mu.Lock()

	var hand *detector.HandLandmarks
	if len(hands) > 0 {
		hand = &hands[0]
	}

	raw, history := a.classifier.Classify(hand, a.history)
	a.history = history

	out, state := a.stabilizer.Stabilize(raw, a.state, now)
	a.state = state
	a.frame++

	ev := Event{
		Frame:       a.frame,
		At:          now,
		HandPresent: hand != nil,
		Raw:         raw,
		Label:       out.Label,
		Action:      out.Action,
	}

	if hand != nil {
		pos := gesture.IndexTipPosition(hand)
		ev.Position = &pos
		ev.Poses = gesture.Poses(hand)
		if a.config.Menu.Tracking {
			a.navigator.Track(pos)
		}
	}
	if ev.Action != "" && !(a.config.Menu.Tracking && ev.Action.IsSwipe()) {
		if sel, ok := a.navigator.Apply(ev.Action); ok {
			ev.Selection = &sel
		}
	}
	ev.Cursor = a.navigator.Grid().Cursor()

	prev := a.latest
	a.latest = ev
	session := a.session
	a.record(session, prev, ev)

	a.mu.Unlock()

	a.metrics.frameProcessed()
	if ev.Action != "" {
		a.metrics.action(string(ev.Action))
		a.log.Info().Str("action", string(ev.Action)).Int64("frame", ev.Frame).Msg("gesture action")
	}
	if ev.Selection != nil {
		a.metrics.selection()
		a.log.Info().
			Int("row", ev.Selection.Cell.Row).
			Int("col", ev.Selection.Cell.Col).
			Str("item", ev.Selection.Item.Label).
			Msg("menu selection")
	}

	a.dispatch(session, ev)
	a.publish(ev)
	return ev
}

// Latest returns the most recent event.
func (a *App) Latest() Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latest
}

// State returns the stabilizer state after the last processed frame.
func (a *App) State() stabilizer.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// History returns the fingertip history after the last processed frame.
func (a *App) History() gesture.History {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history
}

// Reset clears the history and stabilizer state, as at the start of a session.
func (a *App) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = a.history.Reset()
	a.state = stabilizer.State{}
	a.frame = 0
	a.latest = Event{}
}

// Navigator returns the menu navigator.
func (a *App) Navigator() *menu.Navigator {
	return a.navigator
}

// Classifier returns the gesture classifier.
func (a *App) Classifier() *gesture.Classifier {
	return a.classifier
}

// StabilizerConfig returns the effective stabilizer configuration.
func (a *App) StabilizerConfig() stabilizer.Config {
	return a.stabilizer.Config()
}

// Store returns the configured store, or nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// Subscribe returns a channel receiving every subsequent event and a
// function that cancels the subscription. Events are dropped for a
// subscriber whose buffer is full.
func (a *App) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	a.subMu.Lock()
	a.subs[ch] = struct{}{}
	a.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.subMu.Lock()
			delete(a.subs, ch)
			a.subMu.Unlock()
			close(ch)
		})
	}
}

func (a *App) publish(ev Event) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	for ch := range a.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// LatestFrame returns a copy of the last captured frame. The caller owns it.
func (a *App) LatestFrame() (gocv.Mat, bool) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	if a.lastFrame == nil || a.lastFrame.Empty() {
		return gocv.NewMat(), false
	}
	return a.lastFrame.Clone(), true
}

func (a *App) setLastFrame(frame *gocv.Mat) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	if a.lastFrame != nil {
		a.lastFrame.Close()
	}
	a.lastFrame = frame
}

// Wait blocks until in-flight plugin runs have finished.
func (a *App) Wait() {
	a.jobs.Wait()
}

// Close stops the capture loop, cancels running plugins and releases the
// last frame.
func (a *App) Close() {
	a.Stop()
	a.cancel()
	a.jobs.Wait()
	a.setLastFrame(nil)
}
