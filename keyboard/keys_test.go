package keyboard

import "testing"

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		want    Key
		wantErr bool
	}{
		{name: "f9", want: KeyF9},
		{name: "F9", want: KeyF9},
		{name: " space ", want: KeySpace},
		{name: "comma", want: KeyComma},
		{name: "bracket_left", want: KeyBracketLeft},
		{name: "esc", want: KeyEscape},
		{name: "return", want: KeyEnter},
		{name: "dot", want: KeyPeriod},
		{name: "backquote", want: KeyGrave},
		{name: "a", want: KeyA},
		{name: "7", want: Key7},
		{name: "", wantErr: true},
		{name: "notakey", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseKey(%q) succeeded, want error", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKey(%q): %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParseKey(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestKeyStringRoundTrip(t *testing.T) {
	for k, name := range keyNames {
		got, err := ParseKey(name)
		if err != nil {
			t.Errorf("ParseKey(%q): %v", name, err)
			continue
		}
		if got != k {
			t.Errorf("ParseKey(%q) = %v, want %v", name, got, k)
		}
	}
}

func TestMapChar(t *testing.T) {
	tests := []struct {
		ch       rune
		want     Keystroke
		unmapped bool
	}{
		{ch: 'a', want: Keystroke{Key: KeyA}},
		{ch: 'Z', want: Keystroke{Key: KeyZ, Shift: true}},
		{ch: '0', want: Keystroke{Key: Key0}},
		{ch: ' ', want: Keystroke{Key: KeySpace}},
		{ch: '!', want: Keystroke{Key: Key1, Shift: true}},
		{ch: '?', want: Keystroke{Key: KeySlash, Shift: true}},
		{ch: '"', want: Keystroke{Key: KeyApostrophe, Shift: true}},
		{ch: '\n', want: Keystroke{Key: KeyEnter}},
		{ch: 'é', unmapped: true},
		{ch: '€', unmapped: true},
		{ch: '中', unmapped: true},
	}

	for _, tt := range tests {
		ks, ok := MapChar(tt.ch)
		if tt.unmapped {
			if ok {
				t.Errorf("MapChar(%q) = %+v, want unmapped", tt.ch, ks)
			}
			continue
		}
		if !ok {
			t.Errorf("MapChar(%q) unmapped, want %+v", tt.ch, tt.want)
			continue
		}
		if ks != tt.want {
			t.Errorf("MapChar(%q) = %+v, want %+v", tt.ch, ks, tt.want)
		}
	}
}
