//go:build !linux

package keyboard

import (
	"github.com/micmonay/keybd_event"
)

// vkCodes maps the platform-neutral keys to keybd_event virtual key codes,
// which carry the same names on every platform the library supports.
var vkCodes = map[Key]int{
	KeyA: keybd_event.VK_A, KeyB: keybd_event.VK_B, KeyC: keybd_event.VK_C,
	KeyD: keybd_event.VK_D, KeyE: keybd_event.VK_E, KeyF: keybd_event.VK_F,
	KeyG: keybd_event.VK_G, KeyH: keybd_event.VK_H, KeyI: keybd_event.VK_I,
	KeyJ: keybd_event.VK_J, KeyK: keybd_event.VK_K, KeyL: keybd_event.VK_L,
	KeyM: keybd_event.VK_M, KeyN: keybd_event.VK_N, KeyO: keybd_event.VK_O,
	KeyP: keybd_event.VK_P, KeyQ: keybd_event.VK_Q, KeyR: keybd_event.VK_R,
	KeyS: keybd_event.VK_S, KeyT: keybd_event.VK_T, KeyU: keybd_event.VK_U,
	KeyV: keybd_event.VK_V, KeyW: keybd_event.VK_W, KeyX: keybd_event.VK_X,
	KeyY: keybd_event.VK_Y, KeyZ: keybd_event.VK_Z,

	Key0: keybd_event.VK_0, Key1: keybd_event.VK_1, Key2: keybd_event.VK_2,
	Key3: keybd_event.VK_3, Key4: keybd_event.VK_4, Key5: keybd_event.VK_5,
	Key6: keybd_event.VK_6, Key7: keybd_event.VK_7, Key8: keybd_event.VK_8,
	Key9: keybd_event.VK_9,

	KeyF1: keybd_event.VK_F1, KeyF2: keybd_event.VK_F2,
	KeyF3: keybd_event.VK_F3, KeyF4: keybd_event.VK_F4,
	KeyF5: keybd_event.VK_F5, KeyF6: keybd_event.VK_F6,
	KeyF7: keybd_event.VK_F7, KeyF8: keybd_event.VK_F8,
	KeyF9: keybd_event.VK_F9, KeyF10: keybd_event.VK_F10,
	KeyF11: keybd_event.VK_F11, KeyF12: keybd_event.VK_F12,

	KeySpace:     keybd_event.VK_SPACE,
	KeyEnter:     keybd_event.VK_ENTER,
	KeyTab:       keybd_event.VK_TAB,
	KeyBackspace: keybd_event.VK_BACKSPACE,
	KeyEscape:    keybd_event.VK_ESC,
	KeyCapsLock:  keybd_event.VK_CAPSLOCK,

	// Punctuation uses the layout-dependent SP aliases.
	KeyGrave:        keybd_event.VK_SP1,
	KeyMinus:        keybd_event.VK_SP2,
	KeyEqual:        keybd_event.VK_SP3,
	KeyBracketLeft:  keybd_event.VK_SP4,
	KeyBracketRight: keybd_event.VK_SP5,
	KeySemicolon:    keybd_event.VK_SP6,
	KeyApostrophe:   keybd_event.VK_SP7,
	KeyBackslash:    keybd_event.VK_SP8,
	KeyComma:        keybd_event.VK_SP9,
	KeyPeriod:       keybd_event.VK_SP10,
	KeySlash:        keybd_event.VK_SP11,
}

func vkCode(k Key) (int, bool) {
	vk, ok := vkCodes[k]
	return vk, ok
}

// launchKeys emits one synthetic press/release of vk with the requested
// modifiers. paste selects the platform paste modifier (ctrl, cmd on macOS).
func launchKeys(shift, paste bool, vk int) error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.SetKeys(vk)
	if shift {
		kb.HasSHIFT(true)
	}
	if paste {
		if pasteUsesSuper() {
			kb.HasSuper(true)
		} else {
			kb.HasCTRL(true)
		}
	}
	return kb.Launching()
}
