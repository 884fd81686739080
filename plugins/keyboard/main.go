// Package main provides a keyboard plugin for macOS.
// It turns stabilized gestures and menu selections into keystrokes via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request is the subset of the executor's request this plugin reads.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Trigger string          `json:"trigger"`
	Item    string          `json:"item"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response is written back to the executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// KeystrokeParams defines parameters for the keystroke and shortcut actions.
type KeystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// KeyCodeParams selects a raw virtual key code, e.g. 100 for play/pause.
type KeyCodeParams struct {
	Code int `json:"code"`
}

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

// gestureKeyCodes are the virtual key codes the "gesture" action sends.
var gestureKeyCodes = map[string]int{
	"Swipe Left":  123, // left arrow
	"Swipe Right": 124, // right arrow
	"Swipe Down":  125, // down arrow
	"Swipe Up":    126, // up arrow
	"Thumbs Up":   36,  // return
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	script, err := scriptFor(req)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}
	if err := runAppleScript(script); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
		return
	}

	writeResponse(Response{Success: true})
}

// scriptFor builds the AppleScript for a request without running it.
func scriptFor(req Request) (string, error) {
	switch req.Action {
	case "keystroke", "shortcut":
		var p KeystrokeParams
		if err := json.Unmarshal(orEmpty(req.Params), &p); err != nil {
			return "", fmt.Errorf("failed to parse params: %w", err)
		}
		if p.Key == "" {
			return "", fmt.Errorf("key is required")
		}
		return buildKeystrokeScript(p.Key, p.Modifiers), nil

	case "keycode":
		var p KeyCodeParams
		if err := json.Unmarshal(orEmpty(req.Params), &p); err != nil {
			return "", fmt.Errorf("failed to parse params: %w", err)
		}
		if p.Code <= 0 {
			return "", fmt.Errorf("code is required")
		}
		return buildKeyCodeScript(p.Code), nil

	case "gesture":
		code, ok := gestureKeyCodes[req.Gesture]
		if !ok {
			return "", fmt.Errorf("no key for gesture %q", req.Gesture)
		}
		return buildKeyCodeScript(code), nil
	}
	return "", fmt.Errorf("unknown action: %s", req.Action)
}

func orEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("{}")
	}
	return raw
}

// buildKeystrokeScript generates an AppleScript for the given key and modifiers.
func buildKeystrokeScript(key string, modifiers []string) string {
	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`,
		key, strings.Join(appleModifiers, ", "))
}

func buildKeyCodeScript(code int) string {
	return fmt.Sprintf(`tell application "System Events" to key code %d`, code)
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
