//go:build !linux

package keyboard

import (
	"testing"

	hook "github.com/robotn/gohook"
	"github.com/vcaesar/keycode"
)

func newTestHookSource(suppress ...Key) *hookSource {
	s := &hookSource{
		suppress: suppressSet(suppress),
		rawcodes: make(map[uint16]Key),
		events:   make(chan Edge, 64),
		done:     make(chan struct{}),
		down:     make(map[Key]bool),
	}
	for k := range s.suppress {
		if rc, ok := keycode.Keycode[k.String()]; ok {
			s.rawcodes[rc] = k
		}
	}
	return s
}

func f9Event(kind uint8) hook.Event {
	return hook.Event{Kind: kind, Rawcode: keycode.Keycode["f9"]}
}

func TestHookAutorepeatCollapsesToOnePress(t *testing.T) {
	s := newTestHookSource(KeyF9, KeyF10)

	// Holding a key delivers KeyDown followed by a stream of KeyHold
	// events; only the first may surface as a press edge.
	if _, ok := s.toEdge(f9Event(hook.KeyDown)); !ok {
		t.Fatal("initial press dropped")
	}
	for i := 0; i < 5; i++ {
		if edge, ok := s.toEdge(f9Event(hook.KeyHold)); ok {
			t.Fatalf("repeat %d surfaced as edge %+v", i, edge)
		}
	}

	edge, ok := s.toEdge(f9Event(hook.KeyUp))
	if !ok || edge.Pressed {
		t.Fatalf("release: got %+v ok=%v", edge, ok)
	}

	// After the release a new press is a real edge again.
	edge, ok = s.toEdge(f9Event(hook.KeyDown))
	if !ok || !edge.Pressed {
		t.Fatalf("second press: got %+v ok=%v", edge, ok)
	}
}

func TestHookIgnoresUnsuppressedKeys(t *testing.T) {
	s := newTestHookSource(KeyF9)
	ev := hook.Event{Kind: hook.KeyDown, Rawcode: keycode.Keycode["a"]}
	if edge, ok := s.toEdge(ev); ok {
		t.Fatalf("unsuppressed key surfaced as %+v", edge)
	}
}

func TestHookReadLoopExitsBeforeEventsClose(t *testing.T) {
	s := newTestHookSource(KeyF9)
	ch := make(chan hook.Event, 8)

	s.wg.Add(1)
	go s.readLoop(ch)

	ch <- f9Event(hook.KeyDown)

	// Shut down the way Close does; the loop must be gone before the
	// events channel closes, otherwise a late edge would hit a closed
	// channel.
	close(s.done)
	s.wg.Wait()
	close(s.events)

	// A straggler on the hook channel after shutdown must not panic.
	ch <- f9Event(hook.KeyUp)
}
