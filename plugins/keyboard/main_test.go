package main

import (
	"encoding/json"
	"testing"
)

func TestScriptFor(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		want    string
		wantErr bool
	}{
		{
			name: "keystroke",
			req:  Request{Action: "keystroke", Params: json.RawMessage(`{"key":"a"}`)},
			want: `tell application "System Events" to keystroke "a"`,
		},
		{
			name: "shortcut with modifiers",
			req:  Request{Action: "shortcut", Params: json.RawMessage(`{"key":"c","modifiers":["cmd","Shift","bogus"]}`)},
			want: `tell application "System Events" to keystroke "c" using {command down, shift down}`,
		},
		{
			name: "keycode",
			req:  Request{Action: "keycode", Params: json.RawMessage(`{"code":100}`)},
			want: `tell application "System Events" to key code 100`,
		},
		{
			name: "gesture maps swipe to arrow",
			req:  Request{Action: "gesture", Gesture: "Swipe Left"},
			want: `tell application "System Events" to key code 123`,
		},
		{name: "keystroke without key", req: Request{Action: "keystroke"}, wantErr: true},
		{name: "keycode without code", req: Request{Action: "keycode"}, wantErr: true},
		{name: "unmapped gesture", req: Request{Action: "gesture", Gesture: "Open Palm"}, wantErr: true},
		{name: "bad params", req: Request{Action: "keystroke", Params: json.RawMessage(`[`)}, wantErr: true},
		{name: "unknown action", req: Request{Action: "launch"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scriptFor(tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("scriptFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("scriptFor() = %q, want %q", got, tt.want)
			}
		})
	}
}
