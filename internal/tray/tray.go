// Package tray provides the system tray interface for the Mudra daemon.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/session"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onMode     func(mode session.Mode)
	onSettings func()
	onQuit     func()
	enabled    bool
	mode       session.Mode
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuFPS    *systray.MenuItem
	menuModes  map[session.Mode]*systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New(mode session.Mode) *Tray {
	return &Tray{
		enabled: true,
		mode:    mode,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnMode sets the callback function to be called when a mode is selected.
func (t *Tray) OnMode(fn func(mode session.Mode)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMode = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and unblocks Run.
func (t *Tray) Quit() {
	systray.Quit()
}

// modeLabels maps each mode to its menu title.
var modeLabels = []struct {
	mode  session.Mode
	title string
}{
	{session.ModeFaceFilter, "Face Filter"},
	{session.ModeHandGesture, "Hand Gesture"},
	{session.ModeBodyPose, "Body Pose"},
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra Landmark Detection")

	t.menuToggle = systray.AddMenuItem("● Enabled", "Toggle frame processing")
	systray.AddSeparator()

	t.menuModes = make(map[session.Mode]*systray.MenuItem, len(modeLabels))
	for _, m := range modeLabels {
		item := systray.AddMenuItemCheckbox(m.title, "Switch to "+m.title+" mode", m.mode == t.mode)
		t.menuModes[m.mode] = item
	}
	systray.AddSeparator()

	t.menuFPS = systray.AddMenuItem("FPS: --", "Current processing rate")
	t.menuFPS.Disable()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		faceCh := t.menuModes[session.ModeFaceFilter].ClickedCh
		handCh := t.menuModes[session.ModeHandGesture].ClickedCh
		poseCh := t.menuModes[session.ModeBodyPose].ClickedCh

		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-faceCh:
				t.handleMode(session.ModeFaceFilter)
			case <-handCh:
				t.handleMode(session.ModeHandGesture)
			case <-poseCh:
				t.handleMode(session.ModeBodyPose)
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if enabled {
		t.menuToggle.SetTitle("● Enabled")
	} else {
		t.menuToggle.SetTitle("○ Disabled")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleMode handles a mode menu item click. The items behave as a radio
// group: exactly one is checked.
func (t *Tray) handleMode(mode session.Mode) {
	t.mu.Lock()
	t.mode = mode
	for m, item := range t.menuModes {
		if m == mode {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
	callback := t.onMode
	t.mu.Unlock()

	if callback != nil {
		callback(mode)
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetFPS updates the FPS display in the menu.
func (t *Tray) SetFPS(fps int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuFPS != nil {
		if fps <= 0 {
			t.menuFPS.SetTitle("FPS: --")
		} else {
			t.menuFPS.SetTitle(fmt.Sprintf("FPS: %d", fps))
		}
	}
}

// SetMode updates the checked mode item, for switches made outside the tray.
func (t *Tray) SetMode(mode session.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.menuModes == nil {
		t.mode = mode
		return
	}
	t.mode = mode
	for m, item := range t.menuModes {
		if m == mode {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Mode returns the currently selected mode.
func (t *Tray) Mode() session.Mode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}
