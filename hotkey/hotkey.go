// Package hotkey registers the global shortcut that toggles recording
// from anywhere, without the window focused.
package hotkey

import (
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// toggleChord is the default recording shortcut.
var toggleChord = []string{"ctrl", "shift", "r"}

// Manager owns the global keyboard hook. Callbacks run on the hook
// goroutine, so they must not block.
type Manager struct {
	onToggle func()

	mu      sync.Mutex
	running bool
}

// NewManager builds a manager that invokes onToggle each time the
// recording chord is pressed.
func NewManager(onToggle func()) *Manager {
	return &Manager{onToggle: onToggle}
}

// Start installs the hook and begins listening. It returns immediately;
// the event loop runs on its own goroutine until Stop.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	hook.Register(hook.KeyDown, toggleChord, func(e hook.Event) {
		slog.Debug("recording hotkey pressed")
		if m.onToggle != nil {
			go m.onToggle()
		}
	})

	events := hook.Start()
	go func() {
		<-hook.Process(events)
		slog.Debug("hotkey event loop exited")
	}()

	m.running = true
	slog.Info("global hotkey registered", "chord", toggleChord)
	return nil
}

// Stop removes the hook. Safe to call when never started.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	hook.End()
	m.running = false
}
