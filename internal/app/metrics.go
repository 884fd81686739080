package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/ayusman/mudra/internal/app"

// Reasons a captured frame does not reach the classifier.
const (
	skipReadError   = "read_error"
	skipDetectError = "detect_error"
	skipStill       = "still"
	skipStale       = "stale"
)

// metrics holds the pipeline counters. They come from the global OTel meter
// provider and are no-ops unless an SDK is installed.
type metrics struct {
	processed  metric.Int64Counter
	skipped    metric.Int64Counter
	actions    metric.Int64Counter
	selections metric.Int64Counter
	plugins    metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)
	var (
		out metrics
		err error
	)

	if out.processed, err = m.Int64Counter("mudra.frames.processed",
		metric.WithDescription("Frames classified and stabilized")); err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}
	if out.skipped, err = m.Int64Counter("mudra.frames.skipped",
		metric.WithDescription("Captured frames that were not classified")); err != nil {
		return nil, fmt.Errorf("creating skipped counter: %w", err)
	}
	if out.actions, err = m.Int64Counter("mudra.gestures.actions",
		metric.WithDescription("Stabilized gesture actions")); err != nil {
		return nil, fmt.Errorf("creating actions counter: %w", err)
	}
	if out.selections, err = m.Int64Counter("mudra.menu.selections",
		metric.WithDescription("Menu items selected")); err != nil {
		return nil, fmt.Errorf("creating selections counter: %w", err)
	}
	if out.plugins, err = m.Int64Counter("mudra.plugins.runs",
		metric.WithDescription("Plugin executions by outcome")); err != nil {
		return nil, fmt.Errorf("creating plugin counter: %w", err)
	}
	return &out, nil
}

func (m *metrics) frameProcessed() {
	m.processed.Add(context.Background(), 1)
}

func (m *metrics) frameSkipped(reason string) {
	m.skipped.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *metrics) action(label string) {
	m.actions.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("label", label)))
}

func (m *metrics) selection() {
	m.selections.Add(context.Background(), 1)
}

func (m *metrics) pluginRun(name string, ok bool) {
	m.plugins.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("plugin", name),
		attribute.Bool("success", ok),
	))
}
