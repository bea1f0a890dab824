package keyboard

// Keystroke is a single key with an optional shift modifier, sufficient to
// produce one character on a US layout.
type Keystroke struct {
	Key   Key
	Shift bool
}

// usLayout maps characters to keystrokes on a US keyboard layout. The table
// is intentionally limited; characters outside it (other layouts, non-ASCII)
// are reported unmappable and the caller decides whether to skip or fall
// back to clipboard paste.
var usLayout = map[rune]Keystroke{
	' ':  {Key: KeySpace},
	'\n': {Key: KeyEnter},
	'\t': {Key: KeyTab},

	'-': {Key: KeyMinus},
	'_': {Key: KeyMinus, Shift: true},
	'=': {Key: KeyEqual},
	'+': {Key: KeyEqual, Shift: true},

	'[':  {Key: KeyBracketLeft},
	'{':  {Key: KeyBracketLeft, Shift: true},
	']':  {Key: KeyBracketRight},
	'}':  {Key: KeyBracketRight, Shift: true},
	'\\': {Key: KeyBackslash},
	'|':  {Key: KeyBackslash, Shift: true},

	';':  {Key: KeySemicolon},
	':':  {Key: KeySemicolon, Shift: true},
	'\'': {Key: KeyApostrophe},
	'"':  {Key: KeyApostrophe, Shift: true},
	'`':  {Key: KeyGrave},
	'~':  {Key: KeyGrave, Shift: true},

	',': {Key: KeyComma},
	'<': {Key: KeyComma, Shift: true},
	'.': {Key: KeyPeriod},
	'>': {Key: KeyPeriod, Shift: true},
	'/': {Key: KeySlash},
	'?': {Key: KeySlash, Shift: true},

	'!': {Key: Key1, Shift: true},
	'@': {Key: Key2, Shift: true},
	'#': {Key: Key3, Shift: true},
	'$': {Key: Key4, Shift: true},
	'%': {Key: Key5, Shift: true},
	'^': {Key: Key6, Shift: true},
	'&': {Key: Key7, Shift: true},
	'*': {Key: Key8, Shift: true},
	'(': {Key: Key9, Shift: true},
	')': {Key: Key0, Shift: true},
}

// MapChar resolves a character to the keystroke that produces it on a US
// layout. The second return is false for unmappable characters.
func MapChar(ch rune) (Keystroke, bool) {
	if ks, ok := usLayout[ch]; ok {
		return ks, true
	}
	switch {
	case ch >= 'a' && ch <= 'z':
		return Keystroke{Key: KeyA + Key(ch-'a')}, true
	case ch >= 'A' && ch <= 'Z':
		return Keystroke{Key: KeyA + Key(ch-'A'), Shift: true}, true
	case ch >= '0' && ch <= '9':
		return Keystroke{Key: Key0 + Key(ch-'0')}, true
	}
	return Keystroke{}, false
}
