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

// scriptPlugin writes a shell script plugin into a temp dir.
func scriptPlugin(t *testing.T, name, script string, actions ...string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Actions:    actions,
		},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	plugin := scriptPlugin(t, "hello", `echo '{"success":true,"data":{"message":"hello world"}}'
`, "greet")

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "greet"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !response.Success {
		t.Error("expected success=true")
	}

	var data map[string]string
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("expected message 'hello world', got %q", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	plugin := scriptPlugin(t, "echo", `INPUT=$(cat)
echo "{\"success\":true,\"data\":$INPUT}"
`)

	request := &Request{
		Action:  "key",
		Gesture: "Thumbs Up",
		Trigger: TriggerMenu,
		Item:    "Play",
		Row:     1,
		Col:     2,
		Params:  json.RawMessage(`{"key":"space"}`),
	}

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, request)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var received Request
	if err := json.Unmarshal(response.Data, &received); err != nil {
		t.Fatalf("failed to decode echoed request: %v", err)
	}
	if received.Action != "key" || received.Gesture != "Thumbs Up" || received.Trigger != TriggerMenu {
		t.Errorf("unexpected echoed request: %+v", received)
	}
	if received.Item != "Play" || received.Row != 1 || received.Col != 2 {
		t.Errorf("menu cell not passed through: %+v", received)
	}
	if string(received.Params) != `{"key":"space"}` {
		t.Errorf("params = %s", received.Params)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := scriptPlugin(t, "slow", `sleep 10
echo '{"success":true}'
`)

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), plugin, &Request{Action: "slow"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestExecutor_ContextCancel(t *testing.T) {
	plugin := scriptPlugin(t, "slow", `sleep 10
echo '{"success":true}'
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExecutor(5*time.Second).Execute(ctx, plugin, &Request{}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	plugin := scriptPlugin(t, "fails", `echo '{"success":false,"error":"something went wrong"}'
`)

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "fail"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if response.Success {
		t.Error("expected success=false")
	}
	if response.Error != "something went wrong" {
		t.Errorf("expected error 'something went wrong', got %q", response.Error)
	}
}

func TestExecutor_Execute_InvalidJSON(t *testing.T) {
	plugin := scriptPlugin(t, "bad", `echo 'not valid json'
`)

	if _, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{}); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestExecutor_Execute_NonZeroExit(t *testing.T) {
	plugin := scriptPlugin(t, "exit", `echo "Error: something failed" >&2
exit 1
`)

	if _, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{}); err == nil {
		t.Fatal("expected error for non-zero exit, got nil")
	}
}

func TestNewExecutor(t *testing.T) {
	if got := NewExecutor(3 * time.Second).Timeout(); got != 3*time.Second {
		t.Errorf("Timeout() = %s, want 3s", got)
	}
	if got := NewExecutor(0).Timeout(); got != DefaultTimeout {
		t.Errorf("Timeout() = %s, want default %s", got, DefaultTimeout)
	}
}
