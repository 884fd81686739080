// Package plugin discovers and runs external action plugins. A plugin is an
// executable that reads one Request as JSON on stdin and writes one Response
// as JSON on stdout.
package plugin

import (
	"encoding/json"
	"slices"
)

// Triggers say why a plugin was invoked.
const (
	TriggerMenu    = "menu"    // A menu item was selected
	TriggerBinding = "binding" // A bound gesture fired
)

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Supports reports whether the manifest declares action. A manifest with no
// actions accepts any.
func (m Manifest) Supports(action string) bool {
	return len(m.Actions) == 0 || slices.Contains(m.Actions, action)
}

// Request is sent to a plugin for execution.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Trigger string          `json:"trigger"`
	Session string          `json:"session,omitempty"`
	Item    string          `json:"item,omitempty"`
	Row     int             `json:"row"`
	Col     int             `json:"col"`
	Config  json.RawMessage `json:"config,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a plugin's reply.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
