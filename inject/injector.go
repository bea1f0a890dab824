package inject

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"

	"github.com/toro1221/talki/keyboard"
)

// ErrUnmappableCharacter marks a character the direct backend cannot type.
var ErrUnmappableCharacter = errors.New("character not mappable to a keystroke")

// Typer is the slice of the keyboard source the injectors need.
type Typer interface {
	TypeKey(k keyboard.Key, shift bool) error
	Backspace(n int) error
	PasteShortcut() error
}

// Result counts what an edit actually did. Partial application is normal
// for the direct backend; Skipped reports characters it could not type.
type Result struct {
	Deleted int
	Typed   int
	Skipped int
}

// Injector applies edits to the focused application.
type Injector interface {
	Apply(e Edit) (Result, error)
}

// Direct types every character as a synthetic keystroke. Characters that
// have no US-layout keystroke are skipped and counted, the rest of the
// edit still goes through.
type Direct struct {
	typer  Typer
	warned bool
}

// NewDirect creates a keystroke-based injector.
func NewDirect(t Typer) *Direct { return &Direct{typer: t} }

func (in *Direct) Apply(e Edit) (Result, error) {
	var res Result
	if e.IsZero() {
		return res, nil
	}

	if e.Delete > 0 {
		if err := in.typer.Backspace(e.Delete); err != nil {
			return res, fmt.Errorf("delete %d characters: %w", e.Delete, err)
		}
		res.Deleted = e.Delete
	}

	for _, ch := range e.Append {
		ks, ok := keyboard.MapChar(ch)
		if !ok {
			res.Skipped++
			if !in.warned {
				in.warned = true
				slog.Warn("skipping characters with no keystroke mapping, consider clipboard injection", "char", string(ch))
			}
			continue
		}
		if err := in.typer.TypeKey(ks.Key, ks.Shift); err != nil {
			return res, fmt.Errorf("type %q after %d characters: %w", ch, res.Typed, err)
		}
		res.Typed++
	}
	return res, nil
}

// clipboardSettle is how long the focused app gets to read the clipboard
// after the paste shortcut before the previous contents are restored.
const clipboardSettle = 100 * time.Millisecond

// Clipboard deletes with backspaces and appends with a clipboard paste.
// The previous clipboard contents are restored best-effort afterwards.
type Clipboard struct {
	typer Typer
}

// NewClipboard creates a paste-based injector.
func NewClipboard(t Typer) *Clipboard { return &Clipboard{typer: t} }

func (in *Clipboard) Apply(e Edit) (Result, error) {
	var res Result
	if e.IsZero() {
		return res, nil
	}

	if e.Delete > 0 {
		if err := in.typer.Backspace(e.Delete); err != nil {
			return res, fmt.Errorf("delete %d characters: %w", e.Delete, err)
		}
		res.Deleted = e.Delete
	}
	if e.Append == "" {
		return res, nil
	}

	prev, prevErr := clipboard.ReadAll()
	if prevErr != nil {
		slog.Warn("read clipboard failed, previous contents will not be restored", "error", prevErr)
	}
	if err := clipboard.WriteAll(e.Append); err != nil {
		return res, fmt.Errorf("set clipboard: %w", err)
	}
	if err := in.typer.PasteShortcut(); err != nil {
		return res, fmt.Errorf("paste shortcut: %w", err)
	}
	res.Typed = len([]rune(e.Append))

	time.Sleep(clipboardSettle)
	if prevErr == nil {
		if err := clipboard.WriteAll(prev); err != nil {
			slog.Warn("restore clipboard failed", "error", err)
		}
	}
	return res, nil
}
