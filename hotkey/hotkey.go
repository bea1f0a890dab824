// Package hotkey turns raw key edges into recording commands.
//
// The machine recognizes two keys: push-to-talk records while held, toggle
// starts and stops on successive presses. At most one recording is active at
// a time; edges on the other mode's key during a recording are ignored.
package hotkey

import (
	"fmt"

	"github.com/toro1221/talki/keyboard"
)

// Mode identifies how a recording was started.
type Mode int

const (
	ModeHoldToTalk Mode = iota
	ModeToggle
)

func (m Mode) String() string {
	if m == ModeToggle {
		return "toggle"
	}
	return "hold-to-talk"
}

// Action is the session-level command kind.
type Action int

const (
	ActionStart Action = iota
	ActionStop
)

// Command is emitted by the machine when an edge changes the recording state.
type Command struct {
	Action Action
	Mode   Mode
}

type state int

const (
	stateIdle state = iota
	stateRecording
)

// Machine is the hotkey state machine. It is not safe for concurrent use;
// feed it from a single goroutine.
type Machine struct {
	pushToTalk keyboard.Key
	toggle     keyboard.Key

	state state
	mode  Mode
}

// NewMachine creates a machine for the two configured keys, which must be
// distinct.
func NewMachine(pushToTalk, toggle keyboard.Key) (*Machine, error) {
	if pushToTalk == keyboard.KeyUnknown {
		return nil, fmt.Errorf("push-to-talk key not set")
	}
	if toggle == keyboard.KeyUnknown {
		return nil, fmt.Errorf("toggle key not set")
	}
	if pushToTalk == toggle {
		return nil, fmt.Errorf("push-to-talk and toggle keys must be distinct, both are %q", pushToTalk)
	}
	return &Machine{pushToTalk: pushToTalk, toggle: toggle}, nil
}

// Keys returns the configured keys, for building the suppression set.
func (m *Machine) Keys() []keyboard.Key {
	return []keyboard.Key{m.pushToTalk, m.toggle}
}

// Recording reports whether a recording is active.
func (m *Machine) Recording() bool { return m.state == stateRecording }

// Feed advances the machine with one edge. The second return is true when a
// command was emitted.
func (m *Machine) Feed(e keyboard.Edge) (Command, bool) {
	switch m.state {
	case stateIdle:
		if !e.Pressed {
			return Command{}, false
		}
		switch e.Key {
		case m.pushToTalk:
			m.state, m.mode = stateRecording, ModeHoldToTalk
			return Command{Action: ActionStart, Mode: ModeHoldToTalk}, true
		case m.toggle:
			m.state, m.mode = stateRecording, ModeToggle
			return Command{Action: ActionStart, Mode: ModeToggle}, true
		}

	case stateRecording:
		switch m.mode {
		case ModeHoldToTalk:
			if e.Key == m.pushToTalk && !e.Pressed {
				m.state = stateIdle
				return Command{Action: ActionStop, Mode: ModeHoldToTalk}, true
			}
		case ModeToggle:
			if e.Key == m.toggle && e.Pressed {
				m.state = stateIdle
				return Command{Action: ActionStop, Mode: ModeToggle}, true
			}
		}
	}
	return Command{}, false
}

// Stop forces the machine back to idle, emitting the stop command for the
// active mode. Used on shutdown so an active recording always sees its stop.
func (m *Machine) Stop() (Command, bool) {
	if m.state != stateRecording {
		return Command{}, false
	}
	m.state = stateIdle
	return Command{Action: ActionStop, Mode: m.mode}, true
}
