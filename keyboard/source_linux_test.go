//go:build linux

package keyboard

import (
	"testing"
	"time"
)

func suppressedKeyEvent(code uint16, value int32) inputEvent {
	return inputEvent{typ: evKey, code: code, value: value}
}

func TestHandleEventDoesNotBlockAfterDone(t *testing.T) {
	code, _ := evdevCode(KeyF9)
	s := &evdevSource{
		suppress: map[uint16]Key{code: KeyF9},
		events:   make(chan Edge, 2),
		done:     make(chan struct{}),
	}

	// Fill the buffer with nobody consuming.
	s.handleEvent(suppressedKeyEvent(code, 1))
	s.handleEvent(suppressedKeyEvent(code, 0))

	close(s.done)

	// With the buffer full and shutdown signalled, another suppressed
	// edge must be dropped instead of wedging the read loop.
	finished := make(chan struct{})
	go func() {
		s.handleEvent(suppressedKeyEvent(code, 1))
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("handleEvent blocked on a full buffer after shutdown")
	}
}

func TestHandleEventDropsAutorepeat(t *testing.T) {
	code, _ := evdevCode(KeyF10)
	s := &evdevSource{
		suppress: map[uint16]Key{code: KeyF10},
		events:   make(chan Edge, 8),
		done:     make(chan struct{}),
	}

	s.handleEvent(suppressedKeyEvent(code, 1))
	s.handleEvent(suppressedKeyEvent(code, 2))
	s.handleEvent(suppressedKeyEvent(code, 2))
	s.handleEvent(suppressedKeyEvent(code, 0))

	if got := len(s.events); got != 2 {
		t.Fatalf("got %d edges, want press and release only", got)
	}
	press := <-s.events
	release := <-s.events
	if !press.Pressed || release.Pressed {
		t.Fatalf("edges out of order: %+v, %+v", press, release)
	}
}
