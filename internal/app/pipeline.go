package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
)

// Pipeline timing used when the motion gate is enabled.
const (
	// IdleFPS is the frame rate while nothing in view moves.
	IdleFPS = 5
	// IdleTimeout is how long the view must stay still before dropping to IdleFPS.
	IdleTimeout = 2 * time.Second
)

var (
	// ErrNoCamera is returned by Start when the App has no camera.
	ErrNoCamera = errors.New("app has no camera")
	// ErrNoDetector is returned by Start when the App has no detector.
	ErrNoDetector = errors.New("app has no hand detector")
)

// borrowed keeps an AsyncDetector from closing a detector the App does not own.
type borrowed struct{ detector.Detector }

func (borrowed) Close() error { return nil }

// loopState is owned by the capture goroutine.
type loopState struct {
	async     *detector.AsyncDetector
	gate      *capture.MotionGate
	lastSeq   uint64
	lastHands []detector.HandLandmarks
	lastMove  time.Time
	idle      bool
}

// Start opens the camera and runs the capture loop until Stop. Calling Start
// on a running App does nothing.
func (a *App) Start() error {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if a.stopCh != nil {
		return nil
	}
	if a.config.Camera == nil {
		return ErrNoCamera
	}
	if a.config.Detector == nil {
		return ErrNoDetector
	}
	if err := a.config.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	ls := &loopState{lastMove: time.Now()}
	if a.config.Async {
		ls.async = detector.NewAsyncDetector(borrowed{a.config.Detector})
	}
	if a.config.MotionThreshold > 0 {
		ls.gate = capture.NewMotionGate(a.config.MotionThreshold)
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(ls, a.stopCh, a.done)

	a.log.Info().
		Int("fps", a.config.Camera.FPS()).
		Bool("async", a.config.Async).
		Float64("motionThreshold", a.config.MotionThreshold).
		Msg("detection pipeline started")
	return nil
}

// Stop halts the capture loop and closes the camera. The detector stays
// open; its owner closes it.
func (a *App) Stop() {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if a.stopCh == nil {
		return
	}
	close(a.stopCh)
	<-a.done
	a.stopCh, a.done = nil, nil

	if err := a.config.Camera.Close(); err != nil {
		a.log.Warn().Err(err).Msg("error closing camera")
	}
	a.log.Info().Msg("detection pipeline stopped")
}

// Running reports whether the capture loop is active.
func (a *App) Running() bool {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	return a.stopCh != nil
}

// runPipeline ticks at the camera frame rate. Read and detection failures
// skip the frame. With the motion gate enabled, a still view reuses the
// previous hands instead of running detection, and after IdleTimeout the
// loop drops to IdleFPS until something moves.
func (a *App) runPipeline(ls *loopState, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		if ls.async != nil {
			ls.async.Close()
		}
		if ls.gate != nil {
			ls.gate.Close()
		}
	}()

	activeFPS := a.config.Camera.FPS()
	if activeFPS <= 0 {
		activeFPS = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(activeFPS))
	defer ticker.Stop()
	defer func() {
		if ls.idle {
			a.config.Camera.SetFPS(activeFPS)
		}
	}()

	setRate := func(idle bool) {
		if ls.idle == idle {
			return
		}
		ls.idle = idle
		fps := activeFPS
		if idle {
			fps = IdleFPS
		}
		a.config.Camera.SetFPS(fps)
		ticker.Reset(time.Second / time.Duration(fps))
		a.log.Debug().Bool("idle", idle).Int("fps", fps).Msg("switched frame rate")
	}

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			a.step(ls, now, setRate)
		}
	}
}

func (a *App) step(ls *loopState, now time.Time, setRate func(idle bool)) {
	frame, err := a.config.Camera.ReadFrame()
	if err != nil {
		a.metrics.frameSkipped(skipReadError)
		a.log.Debug().Err(err).Msg("frame read failed")
		return
	}
	a.setLastFrame(frame)

	if ls.gate != nil {
		changed, pct := ls.gate.Changed(frame)
		if !changed {
			if now.Sub(ls.lastMove) > IdleTimeout {
				setRate(true)
			}
			a.metrics.frameSkipped(skipStill)
			a.Process(ls.lastHands, now)
			return
		}
		ls.lastMove = now
		setRate(false)
		a.log.Trace().Float64("changed", pct).Msg("motion")
	}

	var hands []detector.HandLandmarks
	if ls.async != nil {
		ls.async.Submit(frame)
		r := ls.async.Latest()
		if r.Seq == ls.lastSeq {
			a.metrics.frameSkipped(skipStale)
			return
		}
		ls.lastSeq = r.Seq
		hands, err = r.Hands, r.Err
	} else {
		hands, err = a.config.Detector.Detect(frame)
	}
	if err != nil {
		a.metrics.frameSkipped(skipDetectError)
		a.log.Warn().Err(err).Msg("hand detection failed")
		return
	}

	ls.lastHands = hands
	a.Process(hands, now)
}
