package tray

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/menu"
)

func TestTitles(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{toggleTitle(true), "● Detecting"},
		{toggleTitle(false), "○ Paused"},
		{actionTitle(""), "Last: none"},
		{actionTitle(gesture.LabelSwipeUp), "Last: Swipe Up"},
		{cursorTitle(menu.Cell{Row: 0, Col: 2}), "Cursor: row 1, col 3"},
		{selectionTitle(nil), "Selected: none"},
		{selectionTitle(&menu.Selection{Item: menu.Item{Label: "Music"}}), "Selected: Music"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTray_Toggle(t *testing.T) {
	tr := New(true)

	var calls []bool
	tr.OnToggle(func(running bool) error {
		calls = append(calls, running)
		return nil
	})

	tr.handleToggle()
	if tr.Running() {
		t.Error("toggle should pause a running tray")
	}
	tr.handleToggle()
	if !tr.Running() {
		t.Error("second toggle should resume")
	}
	if len(calls) != 2 || calls[0] != false || calls[1] != true {
		t.Errorf("callback calls = %v, want [false true]", calls)
	}
}

func TestTray_ToggleError(t *testing.T) {
	tr := New(false)
	tr.OnToggle(func(bool) error { return errors.New("no camera") })

	tr.handleToggle()
	if tr.Running() {
		t.Error("a failed toggle must leave the state unchanged")
	}
}

func TestTray_FollowBeforeReady(t *testing.T) {
	tr := New(true)

	events := make(chan app.Event, 2)
	events <- app.Event{Action: gesture.LabelThumbsUp}
	close(events)

	done := make(chan struct{})
	go func() {
		tr.Follow(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Follow should return when events closes")
	}
}
