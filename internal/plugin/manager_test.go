package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func writeManifest(t *testing.T, root, dir string, m Manifest) string {
	t.Helper()

	pluginDir := filepath.Join(root, dir)
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, ManifestName), data, 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

func TestManager_Discover(t *testing.T) {
	root := t.TempDir()
	pluginDir := writeManifest(t, root, "keyboard", Manifest{
		Name:        "keyboard",
		Version:     "1.0.0",
		Description: "Send keystrokes",
		Executable:  "keyboard",
		Actions:     []string{"key", "shortcut"},
	})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	p := plugins[0]
	if p.Manifest.Name != "keyboard" || p.Manifest.Description != "Send keystrokes" {
		t.Errorf("unexpected manifest: %+v", p.Manifest)
	}
	if p.Path != pluginDir {
		t.Errorf("expected path %q, got %q", pluginDir, p.Path)
	}
	if p.Executable != filepath.Join(pluginDir, "keyboard") {
		t.Errorf("unexpected executable path %q", p.Executable)
	}

	got, err := manager.Get("keyboard")
	if err != nil || got != p {
		t.Errorf("Get(keyboard) = %v, %v", got, err)
	}
}

func TestManager_Discover_SortedAndSkipped(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "b", Manifest{Name: "zeta", Executable: "z"})
	writeManifest(t, root, "a", Manifest{Name: "alpha", Executable: "a"})
	writeManifest(t, root, "noexec", Manifest{Name: "broken"})

	bad := filepath.Join(root, "invalid")
	os.MkdirAll(bad, 0o755)
	os.WriteFile(filepath.Join(bad, ManifestName), []byte("{not json"), 0o644)

	// A directory without a manifest is ignored silently.
	os.MkdirAll(filepath.Join(root, "assets"), 0o755)

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 2 || plugins[0].Manifest.Name != "alpha" || plugins[1].Manifest.Name != "zeta" {
		t.Errorf("unexpected plugins: %v", plugins)
	}

	skipped := manager.Skipped()
	if len(skipped) != 2 {
		t.Errorf("Skipped() = %v, want invalid and noexec", skipped)
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "missing"))
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() on missing dir should not fail: %v", err)
	}
	if len(manager.List()) != 0 {
		t.Error("expected no plugins")
	}
}

func TestManager_Discover_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plugins")
	os.WriteFile(file, nil, 0o644)

	if err := NewManager(file).Discover(); err == nil {
		t.Error("expected error when plugin path is a file")
	}
}

func TestManager_Get_NotFound(t *testing.T) {
	dir := t.TempDir()
	manager := NewManager(dir)
	manager.Discover()

	if _, err := manager.Get("nope"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
	if manager.PluginDir() != dir {
		t.Errorf("PluginDir() = %q, want %q", manager.PluginDir(), dir)
	}
}

func TestManifest_Supports(t *testing.T) {
	m := Manifest{Actions: []string{"key"}}
	if !m.Supports("key") || m.Supports("shortcut") {
		t.Error("Supports() should match declared actions only")
	}
	if !(Manifest{}).Supports("anything") {
		t.Error("a manifest without actions accepts any action")
	}
}

func TestRunner_Run(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	root := t.TempDir()
	dir := writeManifest(t, root, "echo", Manifest{Name: "echo", Executable: "run.sh", Actions: []string{"ok", "fail"}})
	script := `#!/bin/sh
INPUT=$(cat)
case "$INPUT" in
  *'"action":"fail"'*) echo '{"success":false,"error":"nope"}' ;;
  *) echo '{"success":true}' ;;
esac
`
	if err := os.WriteFile(filepath.Join(dir, "run.sh"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(manager, NewExecutor(5*time.Second))
	ctx := context.Background()

	if _, err := runner.Run(ctx, "echo", &Request{Action: "ok"}); err != nil {
		t.Errorf("Run(ok) error = %v", err)
	}
	if _, err := runner.Run(ctx, "echo", &Request{Action: "fail"}); err == nil {
		t.Error("Run(fail) should surface the plugin error")
	}
	if _, err := runner.Run(ctx, "echo", &Request{Action: "other"}); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Run(other) error = %v, want ErrUnknownAction", err)
	}
	if _, err := runner.Run(ctx, "missing", &Request{Action: "ok"}); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Run(missing) error = %v, want ErrPluginNotFound", err)
	}
}
