package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
)

// streamInterval paces the MJPEG stream at about 15 FPS.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves the pipeline's latest frame as MJPEG, annotated with
// the displayed gesture and the menu cursor.
type StreamHandler struct {
	app *app.App
}

// NewStreamHandler creates a new StreamHandler for a.
func NewStreamHandler(a *app.App) *StreamHandler {
	return &StreamHandler{app: a}
}

// overlayFor describes ev for capture.Annotate.
func overlayFor(ev app.Event, item string) capture.Overlay {
	label := string(ev.Label)
	if label == "" {
		label = "-"
	}
	o := capture.Overlay{
		Gesture:      label,
		HandDetected: ev.HandPresent,
		Lines:        []string{fmt.Sprintf("Cursor: (%d, %d) %s", ev.Cursor.Row, ev.Cursor.Col, item)},
	}
	if ev.Selection != nil {
		o.Lines = append(o.Lines, "Selected: "+ev.Selection.Item.Label)
	}
	return o
}

// ServeHTTP streams MJPEG frames until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		frame, ok := h.app.LatestFrame()
		if !ok {
			frame.Close()
			continue
		}

		ev := h.app.Latest()
		item := h.app.Navigator().Grid().Item(ev.Cursor).Label
		capture.Annotate(&frame, overlayFor(ev, item))

		buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
		frame.Close()
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		_, werr := w.Write(buf.GetBytes())
		buf.Close()
		if werr != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
