package capture

import (
	"errors"
	"testing"
)

func TestNewCamera_Defaults(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantFPS int
	}{
		{
			name:    "zero config",
			config:  Config{},
			wantFPS: DefaultFPS,
		},
		{
			name:    "explicit rate",
			config:  Config{DeviceID: 1, FPS: 30},
			wantFPS: 30,
		},
		{
			name:    "negative rate",
			config:  Config{DeviceID: 2, FPS: -1},
			wantFPS: DefaultFPS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.config)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			if cam.IsOpen() {
				t.Error("camera should not be open initially")
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Mirror {
		t.Error("default config should mirror the preview")
	}
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Errorf("default size = %dx%d, want 640x480", cfg.Width, cfg.Height)
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	tests := []struct {
		fps     int
		wantFPS int
	}{
		{10, 10},
		{1, 1},
		{0, 1},
		{-5, 1},
	}

	for _, tt := range tests {
		cam.SetFPS(tt.fps)
		if got := cam.FPS(); got != tt.wantFPS {
			t.Errorf("SetFPS(%d): FPS() = %d, want %d", tt.fps, got, tt.wantFPS)
		}
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(DefaultConfig())
	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera = %v, want nil", err)
	}
}
