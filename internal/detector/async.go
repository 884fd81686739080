package detector

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Result is the most recent output of an AsyncDetector.
type Result struct {
	Hands []HandLandmarks
	Err   error
	Seq   uint64 // 0 until the first detection completes
	At    time.Time
}

// AsyncDetector runs a Detector on a background worker so the capture loop
// never blocks on inference. It holds at most one pending frame: a newer
// frame replaces an unprocessed one. Readers see the latest finished result,
// which may be older than the last submitted frame.
type AsyncDetector struct {
	inner Detector

	mu      sync.Mutex
	cond    *sync.Cond
	pending *gocv.Mat
	latest  Result
	drops   uint64
	closed  bool

	done chan struct{}
}

// NewAsyncDetector starts a worker that feeds submitted frames to inner.
func NewAsyncDetector(inner Detector) *AsyncDetector {
	a := &AsyncDetector{
		inner: inner,
		done:  make(chan struct{}),
	}
	a.cond = sync.NewCond(&a.mu)
	go a.run()
	return a
}

// Submit hands a copy of frame to the worker. It never blocks on detection.
func (a *AsyncDetector) Submit(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	clone := frame.Clone()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		clone.Close()
		return
	}
	if a.pending != nil {
		a.pending.Close()
		a.drops++
	}
	a.pending = &clone
	a.cond.Signal()
}

// Latest returns the most recent detection result.
func (a *AsyncDetector) Latest() Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latest
}

// Drops returns how many submitted frames were replaced before detection.
func (a *AsyncDetector) Drops() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.drops
}

// Detect submits the frame and returns the latest finished result, so an
// AsyncDetector can stand in wherever a Detector is expected.
func (a *AsyncDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	a.Submit(frame)
	r := a.Latest()
	return r.Hands, r.Err
}

// Close stops the worker and closes the wrapped detector.
func (a *AsyncDetector) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.cond.Signal()
	a.mu.Unlock()

	<-a.done
	return a.inner.Close()
}

func (a *AsyncDetector) run() {
	defer close(a.done)

	for {
		a.mu.Lock()
		for a.pending == nil && !a.closed {
			a.cond.Wait()
		}
		if a.closed {
			if a.pending != nil {
				a.pending.Close()
				a.pending = nil
			}
			a.mu.Unlock()
			return
		}
		frame := a.pending
		a.pending = nil
		a.mu.Unlock()

		hands, err := a.inner.Detect(frame)
		frame.Close()

		a.mu.Lock()
		a.latest = Result{
			Hands: hands,
			Err:   err,
			Seq:   a.latest.Seq + 1,
			At:    time.Now(),
		}
		a.mu.Unlock()
	}
}
