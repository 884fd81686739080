package detector

import "gocv.io/x/gocv"

// Detector turns a BGR frame into zero or more hands of 21 landmarks each.
// An empty result means no hand; an error means the frame was not analyzed
// and the caller should move on to the next one.
type Detector interface {
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	Close() error
}

// Config holds configuration options passed to the landmark model.
type Config struct {
	MaxHands        int     // Only the first hand is classified
	MinConfidence   float64 // Palm detection threshold, 0-1
	MinTrackingConf float64 // Landmark tracking threshold, 0-1; below it the palm detector reruns
}

// DefaultConfig returns the detector settings used by the gesture pipeline.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.7,
	}
}
