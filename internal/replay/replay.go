// Package replay reads and writes JSON Lines landmark streams and runs them
// through the gesture pipeline without a camera.
//
// Each line holds one frame:
//
//	{"t": 0.066, "hand": {"points": [{"x":0.5,"y":0.8,"z":0}, ...], "handedness": "Right", "score": 0.9}}
//	{"t": 0.133, "hand": null}
//
// t is seconds since the start of the stream and must not decrease. A line
// may carry "hands" instead of "hand" when more than one hand was seen.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/menu"
)

// ErrTimeWentBack is returned for a frame whose t is before the previous frame's.
var ErrTimeWentBack = errors.New("timestamp is before the previous frame")

// maxLine bounds a single JSON line.
const maxLine = 1 << 20

// Frame is one decoded line of a stream.
type Frame struct {
	Line  int
	T     time.Duration // Offset from the start of the stream
	Hands []detector.HandLandmarks
}

type record struct {
	T     float64            `json:"t"`
	Hand  *detector.RawHand  `json:"hand"`
	Hands []detector.RawHand `json:"hands,omitempty"`
}

// Reader decodes a landmark stream frame by frame.
type Reader struct {
	sc   *bufio.Scanner
	line int
	last time.Duration
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Reader{sc: sc}
}

// Next returns the next frame, or io.EOF at the end of the stream. Blank
// lines are skipped. Errors name the offending line.
func (r *Reader) Next() (Frame, error) {
	for r.sc.Scan() {
		r.line++
		data := bytes.TrimSpace(r.sc.Bytes())
		if len(data) == 0 {
			continue
		}
		f, err := r.decode(data)
		if err != nil {
			return Frame{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		return f, nil
	}
	if err := r.sc.Err(); err != nil {
		return Frame{}, fmt.Errorf("line %d: %w", r.line+1, err)
	}
	return Frame{}, io.EOF
}

func (r *Reader) decode(data []byte) (Frame, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if rec.T < 0 || math.IsNaN(rec.T) || math.IsInf(rec.T, 0) {
		return Frame{}, fmt.Errorf("invalid timestamp %v", rec.T)
	}

	f := Frame{Line: r.line, T: time.Duration(math.Round(rec.T * float64(time.Second)))}
	if f.T < r.last {
		return Frame{}, fmt.Errorf("t=%v: %w", rec.T, ErrTimeWentBack)
	}
	r.last = f.T

	raws := rec.Hands
	if rec.Hand != nil {
		raws = append([]detector.RawHand{*rec.Hand}, raws...)
	}
	for i, raw := range raws {
		lm, err := raw.ToLandmarks()
		if err != nil {
			return Frame{}, fmt.Errorf("hand %d: %w", i, err)
		}
		f.Hands = append(f.Hands, lm)
	}
	return f, nil
}

// ReadAll decodes every remaining frame.
func (r *Reader) ReadAll() ([]Frame, error) {
	var frames []Frame
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}

// Writer encodes frames as a landmark stream.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer to w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func toRaw(h detector.HandLandmarks) *detector.RawHand {
	return &detector.RawHand{
		Points:     append([]detector.Point3D(nil), h.Points[:]...),
		Handedness: h.Handedness,
		Score:      h.Score,
	}
}

// Write appends one frame. Only the first hand goes in "hand"; any others
// go in "hands".
func (w *Writer) Write(f Frame) error {
	rec := record{T: f.T.Seconds()}
	for i, h := range f.Hands {
		if i == 0 {
			rec.Hand = toRaw(h)
			continue
		}
		rec.Hands = append(rec.Hands, *toRaw(h))
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if _, err := w.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Flush writes any buffered frames.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Source yields frames in order and io.EOF at the end. *Reader implements it.
type Source interface {
	Next() (Frame, error)
}

type frameSlice struct {
	frames []Frame
	next   int
}

func (s *frameSlice) Next() (Frame, error) {
	if s.next >= len(s.frames) {
		return Frame{}, io.EOF
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

// FromFrames returns a Source over frames.
func FromFrames(frames []Frame) Source {
	return &frameSlice{frames: frames}
}

// Processor consumes one frame of hands at a time. *app.App implements it.
type Processor interface {
	Process(hands []detector.HandLandmarks, now time.Time) app.Event
}

// Options control Run. The zero value replays as fast as possible from the
// current time.
type Options struct {
	Start    time.Time // Timestamp of t=0; defaults to time.Now()
	Realtime bool      // Sleep so frames are processed at their recorded pace
	OnEvent  func(Frame, app.Event)
}

// Summary totals a replay.
type Summary struct {
	Frames     int                   `json:"frames"`
	Actions    map[gesture.Label]int `json:"actions"`
	Selections []menu.Selection      `json:"selections"`
	Last       app.Event             `json:"last"`
}

// Run feeds every frame of src to p at Start+t until the stream ends or ctx
// is done. A malformed frame stops the replay; the summary covers the
// frames processed before it.
func Run(ctx context.Context, src Source, p Processor, opts Options) (Summary, error) {
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}
	sum := Summary{Actions: make(map[gesture.Label]int)}

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		f, err := src.Next()
		if errors.Is(err, io.EOF) {
			return sum, nil
		}
		if err != nil {
			return sum, err
		}

		at := start.Add(f.T)
		if opts.Realtime {
			if err := sleepUntil(ctx, at); err != nil {
				return sum, err
			}
		}

		ev := p.Process(f.Hands, at)
		sum.Frames++
		sum.Last = ev
		if ev.Action != "" {
			sum.Actions[ev.Action]++
		}
		if ev.Selection != nil {
			sum.Selections = append(sum.Selections, *ev.Selection)
		}
		if opts.OnEvent != nil {
			opts.OnEvent(f, ev)
		}
	}
}

func sleepUntil(ctx context.Context, at time.Time) error {
	d := time.Until(at)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
