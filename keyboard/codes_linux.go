//go:build linux

package keyboard

// Evdev key codes used directly by the source.
const (
	codeA         uint16 = 30
	codeZ         uint16 = 44
	codeV         uint16 = 47
	codeSpace     uint16 = 57
	codeBackspace uint16 = 14
	codeLeftCtrl  uint16 = 29
	codeLeftShift uint16 = 42
)

// evdevCodes maps the platform-neutral keys to Linux input key codes.
var evdevCodes = map[Key]uint16{
	KeyEscape: 1,

	Key1: 2, Key2: 3, Key3: 4, Key4: 5, Key5: 6,
	Key6: 7, Key7: 8, Key8: 9, Key9: 10, Key0: 11,

	KeyMinus:     12,
	KeyEqual:     13,
	KeyBackspace: 14,
	KeyTab:       15,

	KeyQ: 16, KeyW: 17, KeyE: 18, KeyR: 19, KeyT: 20,
	KeyY: 21, KeyU: 22, KeyI: 23, KeyO: 24, KeyP: 25,

	KeyBracketLeft:  26,
	KeyBracketRight: 27,
	KeyEnter:        28,

	KeyA: 30, KeyS: 31, KeyD: 32, KeyF: 33, KeyG: 34,
	KeyH: 35, KeyJ: 36, KeyK: 37, KeyL: 38,

	KeySemicolon:  39,
	KeyApostrophe: 40,
	KeyGrave:      41,
	KeyBackslash:  43,

	KeyZ: 44, KeyX: 45, KeyC: 46, KeyV: 47, KeyB: 48,
	KeyN: 49, KeyM: 50,

	KeyComma:  51,
	KeyPeriod: 52,
	KeySlash:  53,

	KeySpace:    57,
	KeyCapsLock: 58,

	KeyF1: 59, KeyF2: 60, KeyF3: 61, KeyF4: 62, KeyF5: 63,
	KeyF6: 64, KeyF7: 65, KeyF8: 66, KeyF9: 67, KeyF10: 68,
	KeyF11: 87, KeyF12: 88,
}

func evdevCode(k Key) (uint16, bool) {
	code, ok := evdevCodes[k]
	return code, ok
}
