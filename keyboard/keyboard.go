// Package keyboard provides OS-level keyboard interception with selective
// hotkey suppression, and synthetic keystroke output into the focused
// application.
//
// On Linux it grabs evdev keyboard devices exclusively and re-emits
// everything except the suppressed keys through a uinput virtual keyboard,
// so suppressed hotkeys never reach other applications. On other platforms
// it falls back to a global event hook that observes keys without
// suppressing them.
package keyboard

import (
	"errors"
	"time"
)

// ErrPermissionDenied is returned by Open when the process lacks the
// privileges needed to intercept keyboard input.
var ErrPermissionDenied = errors.New("keyboard: permission denied")

// ErrDeviceUnavailable is returned by Open when no keyboard device can be
// acquired.
var ErrDeviceUnavailable = errors.New("keyboard: no keyboard device available")

// ErrUnmappableKey is returned when a key or character cannot be produced on
// the active layout.
var ErrUnmappableKey = errors.New("keyboard: key not mappable")

// ErrClosed is returned by synthesis calls after Close.
var ErrClosed = errors.New("keyboard: source closed")

// Edge is a single key transition observed at the device level.
type Edge struct {
	Key     Key
	Pressed bool
	When    time.Time
}

// Config controls which keys the source consumes.
type Config struct {
	// Suppress lists keys that are consumed by the source: their edges are
	// delivered on Events but never forwarded to the OS input stream.
	// All other keys pass through untouched and in order.
	Suppress []Key
}

// Source intercepts keyboard input and synthesizes output.
//
// Events delivers edges in device order. The channel is closed by Close.
// Close releases every acquired device and must restore normal keyboard
// passthrough on all exit paths; callers defer it unconditionally.
type Source interface {
	Events() <-chan Edge

	// TypeKey emits one synthetic press/release pair, with shift held if
	// requested.
	TypeKey(k Key, shift bool) error

	// Backspace emits n backspace press/release pairs.
	Backspace(n int) error

	// PasteShortcut emits the platform paste chord (ctrl+V, cmd+V on macOS).
	PasteShortcut() error

	Close() error
}

// Open acquires the platform keyboard source.
func Open(cfg Config) (Source, error) {
	return newSource(cfg)
}

// suppressSet builds a lookup for the configured suppress keys.
func suppressSet(keys []Key) map[Key]bool {
	set := make(map[Key]bool, len(keys))
	for _, k := range keys {
		if k != KeyUnknown {
			set[k] = true
		}
	}
	return set
}
