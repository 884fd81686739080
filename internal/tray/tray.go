// Package tray provides a system tray menu for the mudra gesture menu.
package tray

import (
	"context"
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/menu"
)

// Tray shows the pipeline status in the system tray and lets the user pause
// it, open the web UI, or quit.
type Tray struct {
	onToggle func(running bool) error
	onOpen   func()
	onQuit   func()
	running  bool
	mu       sync.RWMutex

	// Menu items stored for later updates; nil until the tray is ready
	menuToggle    *systray.MenuItem
	menuAction    *systray.MenuItem
	menuCursor    *systray.MenuItem
	menuSelection *systray.MenuItem
}

// New creates a Tray reflecting whether the pipeline is running.
func New(running bool) *Tray {
	return &Tray{running: running}
}

// OnToggle sets the callback run when the user pauses or resumes detection.
// A callback error leaves the state unchanged.
func (t *Tray) OnToggle(fn func(running bool) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback run when the user asks for the web UI.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It blocks until Quit and must be called from
// the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func toggleTitle(running bool) string {
	if running {
		return "● Detecting"
	}
	return "○ Paused"
}

func actionTitle(label gesture.Label) string {
	if label == "" {
		return "Last: none"
	}
	return "Last: " + string(label)
}

func cursorTitle(c menu.Cell) string {
	return fmt.Sprintf("Cursor: row %d, col %d", c.Row+1, c.Col+1)
}

func selectionTitle(sel *menu.Selection) string {
	if sel == nil {
		return "Selected: none"
	}
	return "Selected: " + sel.Item.Label
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra gesture menu")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.running), "Pause or resume gesture detection")
	systray.AddSeparator()

	t.menuAction = systray.AddMenuItem(actionTitle(""), "Last fired gesture")
	t.menuAction.Disable()
	t.menuCursor = systray.AddMenuItem(cursorTitle(menu.Cell{}), "Highlighted menu cell")
	t.menuCursor.Disable()
	t.menuSelection = systray.AddMenuItem(selectionTitle(nil), "Last selected item")
	t.menuSelection.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Dashboard...", "Open the web UI in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	next := !t.running
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		if err := callback(next); err != nil {
			return
		}
	}
	t.SetRunning(next)
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	systray.Quit()
}

// SetRunning updates the toggle to match the pipeline.
func (t *Tray) SetRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = running
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(running))
	}
}

// Running returns the state shown by the toggle.
func (t *Tray) Running() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

// Show updates the status items from ev. Frames without an action leave
// the last action in place.
func (t *Tray) Show(ev app.Event) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuAction == nil {
		return
	}
	if ev.Action != "" {
		t.menuAction.SetTitle(actionTitle(ev.Action))
	}
	t.menuCursor.SetTitle(cursorTitle(ev.Cursor))
	if ev.Selection != nil {
		t.menuSelection.SetTitle(selectionTitle(ev.Selection))
	}
}

// Follow shows every event from events until ctx is done or events closes.
func (t *Tray) Follow(ctx context.Context, events <-chan app.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			t.Show(ev)
		}
	}
}
