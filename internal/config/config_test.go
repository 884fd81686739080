package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/stabilizer"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.2, cfg.Classifier.SwipeThreshold)
	assert.Equal(t, 10, cfg.Classifier.HistoryCapacity)
	assert.Equal(t, "hold", cfg.Stabilizer.Policy)
	assert.Equal(t, time.Second, cfg.Stabilizer.HoldDuration)
	assert.Equal(t, time.Second, cfg.Stabilizer.SelectionCooldown)
	assert.Equal(t, "Thumbs Up", cfg.Stabilizer.SelectLabel)
	assert.Equal(t, 1, cfg.Detector.MaxHands)
	assert.Equal(t, 0.7, cfg.Detector.MinDetectionConfidence)
	assert.Equal(t, 15, cfg.Camera.FPS)
	assert.True(t, cfg.Camera.Mirror)
	assert.False(t, cfg.Pipeline.Async)
	assert.Equal(t, 3, cfg.Menu.Rows)
	assert.Equal(t, 3, cfg.Menu.Cols)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, filepath.Join(DataDir(), "mudra.db"), cfg.Store.Path)
	assert.Equal(t, 5*time.Second, cfg.Plugins.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Tray.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "mudra.json", `{
		"classifier": {"swipeThreshold": 0.05},
		"stabilizer": {"policy": "cooldown", "selectionCooldown": "750ms"},
		"menu": {
			"rows": 2, "cols": 2,
			"items": [
				{"label": "Play", "plugin": "keyboard", "action": "keycode", "params": {"code": 100}},
				{"label": "Next"}
			]
		},
		"log": {"level": "debug", "format": "json"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Classifier.SwipeThreshold)
	assert.Equal(t, 10, cfg.Classifier.HistoryCapacity, "unset keys keep defaults")
	assert.Equal(t, "cooldown", cfg.Stabilizer.Policy)
	assert.Equal(t, 750*time.Millisecond, cfg.Stabilizer.SelectionCooldown)
	require.Len(t, cfg.Menu.Items, 2)
	assert.Equal(t, "Play", cfg.Menu.Items[0].Label)
	assert.Equal(t, "keyboard", cfg.Menu.Items[0].Plugin)
	assert.EqualValues(t, 100, cfg.Menu.Items[0].Params["code"])
	assert.Equal(t, "json", cfg.Log.Format)

	sc, err := cfg.StabilizerConfig()
	require.NoError(t, err)
	assert.Equal(t, stabilizer.PolicyCooldown, sc.Policy)
	assert.Equal(t, gesture.LabelThumbsUp, sc.SelectLabel)

	mc := cfg.MenuConfig()
	assert.Equal(t, 2, mc.Rows)
	assert.Len(t, mc.Items, 2)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "mudra.yaml", `
stabilizer:
  holdDuration: 1500ms
camera:
  fps: 30
  mirror: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.Stabilizer.HoldDuration)
	assert.Equal(t, 30, cfg.Camera.FPS)
	assert.False(t, cfg.CameraConfig().Mirror)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MUDRA_STABILIZER_POLICY", "cooldown")
	t.Setenv("MUDRA_CLASSIFIER_SWIPETHRESHOLD", "0.05")
	t.Setenv("MUDRA_PIPELINE_ASYNC", "true")

	cfg, err := Load(writeFile(t, "mudra.json", `{"stabilizer": {"policy": "hold"}}`))
	require.NoError(t, err)

	assert.Equal(t, "cooldown", cfg.Stabilizer.Policy, "environment beats the file")
	assert.Equal(t, 0.05, cfg.GestureConfig().SwipeThreshold)
	assert.True(t, cfg.Pipeline.Async)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_SearchWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "hold", cfg.Stabilizer.Policy)
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Classifier.SwipeThreshold = 0
	cfg.Stabilizer.Policy = "sticky"
	cfg.Detector.MinTrackingConfidence = 1.5
	cfg.Menu.Rows = 0
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "swipe threshold")
	assert.Contains(t, msg, "sticky")
	assert.Contains(t, msg, "minTrackingConfidence")
	assert.Contains(t, msg, "menu grid")
	assert.Contains(t, msg, "xml")
}

func TestValidate_UnknownSelectLabel(t *testing.T) {
	cfg := Default()
	cfg.Stabilizer.SelectLabel = "Jazz Hands"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stabilizer.selectLabel")
}

func TestDetectorConfig(t *testing.T) {
	cfg := Default()
	cfg.Detector.MaxHands = 2

	dc := cfg.DetectorConfig()
	assert.Equal(t, 2, dc.MaxHands)
	assert.Equal(t, 0.7, dc.MinConfidence)
	assert.Equal(t, 0.7, dc.MinTrackingConf)
}
