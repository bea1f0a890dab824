//go:build !linux

package keyboard

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	hook "github.com/robotn/gohook"
	"github.com/vcaesar/keycode"
)

// hookSource observes keys through a global event hook. Unlike the Linux
// evdev backend it cannot suppress: hotkey edges are observed and acted on,
// but the key still reaches the focused application. This matches the
// capability of the OS hook APIs available without elevated privileges.
type hookSource struct {
	suppress map[Key]bool
	rawcodes map[uint16]Key
	events   chan Edge
	done     chan struct{}

	// down tracks the last seen state per suppressed key, touched only by
	// readLoop. OS autorepeat arrives as KeyHold; repeat presses for a
	// key that is already down are dropped so holding a hotkey does not
	// look like a burst of presses.
	down map[Key]bool

	wg sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func newSource(cfg Config) (Source, error) {
	s := &hookSource{
		suppress: suppressSet(cfg.Suppress),
		rawcodes: make(map[uint16]Key),
		events:   make(chan Edge, 64),
		done:     make(chan struct{}),
		down:     make(map[Key]bool),
	}

	// Pre-resolve the hook rawcodes for the configured keys so matching does
	// not depend on the per-event character lookup alone.
	for k := range s.suppress {
		if rc, ok := keycode.Keycode[k.String()]; ok {
			s.rawcodes[rc] = k
		}
	}

	ch := hook.Start()
	s.wg.Add(1)
	go s.readLoop(ch)

	slog.Warn("keyboard hook active without suppression; hotkeys will also reach the focused application")
	return s, nil
}

func (s *hookSource) Events() <-chan Edge { return s.events }

func (s *hookSource) readLoop(ch <-chan hook.Event) {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if edge, ok := s.toEdge(ev); ok {
				select {
				case s.events <- edge:
				case <-s.done:
					return
				}
			}
		}
	}
}

func (s *hookSource) toEdge(ev hook.Event) (Edge, bool) {
	var pressed bool
	switch ev.Kind {
	case hook.KeyDown, hook.KeyHold:
		pressed = true
	case hook.KeyUp:
		pressed = false
	default:
		return Edge{}, false
	}

	key, ok := s.rawcodes[ev.Rawcode]
	if !ok {
		parsed, err := ParseKey(strings.ToLower(hook.RawcodetoKeychar(ev.Rawcode)))
		if err != nil {
			return Edge{}, false
		}
		key = parsed
	}
	if !s.suppress[key] {
		return Edge{}, false
	}
	if pressed && s.down[key] {
		return Edge{}, false
	}
	s.down[key] = pressed
	return Edge{Key: key, Pressed: pressed, When: time.Now()}, true
}

func (s *hookSource) TypeKey(k Key, shift bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	vk, ok := vkCode(k)
	if !ok {
		return fmt.Errorf("type key %q: %w", k, ErrUnmappableKey)
	}
	return launchKeys(shift, false, vk)
}

func (s *hookSource) Backspace(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	vk, _ := vkCode(KeyBackspace)
	for i := 0; i < n; i++ {
		if err := launchKeys(false, false, vk); err != nil {
			return fmt.Errorf("backspace %d of %d: %w", i+1, n, err)
		}
	}
	return nil
}

func (s *hookSource) PasteShortcut() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	vk, _ := vkCode(KeyV)
	return launchKeys(false, true, vk)
}

func (s *hookSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	hook.End()
	// The events channel is only closed once readLoop has exited, so no
	// send can race the close.
	s.wg.Wait()
	close(s.events)
	slog.Info("keyboard hook closed")
	return nil
}

// pasteUsesSuper reports whether the paste chord uses the command key
// instead of control.
func pasteUsesSuper() bool { return runtime.GOOS == "darwin" }
