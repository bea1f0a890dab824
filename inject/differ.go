// Package inject reconciles transcription hypotheses with already-typed
// text and applies the resulting edits to the focused application.
package inject

// Edit is the reconciliation step between what is on screen and a new
// hypothesis: remove the last Delete characters, then type Append.
type Edit struct {
	Delete int    // trailing characters to remove
	Append string // text to type after the deletion
}

// IsZero reports whether the edit changes nothing.
func (e Edit) IsZero() bool { return e.Delete == 0 && e.Append == "" }

// Differ tracks the text injected for one recording and turns each new
// hypothesis into the minimal edit. Characters before the stability
// boundary have already matched across hypotheses and are never revised
// again, which stops transient recognition noise from churning text the
// user has watched settle. The boundary only ever moves forward, except
// across an empty-hypothesis wipe, which deletes the protected text and
// starts the boundary over.
//
// Differ is not safe for concurrent use; the edit queue feeds it from a
// single goroutine.
type Differ struct {
	injected  []rune
	boundary  int
	finalized bool
}

// NewDiffer creates a differ for a recording that starts with no text.
func NewDiffer() *Differ { return &Differ{} }

// Injected returns the text currently on screen for this recording.
func (d *Differ) Injected() string { return string(d.injected) }

// Boundary returns the stable prefix length in characters.
func (d *Differ) Boundary() int { return d.boundary }

// Finalized reports whether a final hypothesis ended this recording.
func (d *Differ) Finalized() bool { return d.finalized }

// Diff computes the edit that reconciles the injected text with the
// hypothesis, and records the result as injected. The second return is
// false when nothing changes. After a final hypothesis every later call
// returns false.
func (d *Differ) Diff(text string, final bool) (Edit, bool) {
	if d.finalized {
		return Edit{}, false
	}
	if final {
		d.finalized = true
	}

	next := []rune(text)

	if runesEqual(d.injected, next) {
		return Edit{}, false
	}

	// The recognizer revised down to nothing; wipe everything. The wipe
	// removes the text the boundary protected, so the boundary starts
	// over with whatever comes next.
	if len(next) == 0 {
		e := Edit{Delete: len(d.injected)}
		d.injected = nil
		d.boundary = 0
		return e, true
	}

	lcp := commonPrefix(d.injected, next)
	p := lcp
	if p < d.boundary {
		// Never cut into the stable prefix, even when the hypothesis
		// disagrees with it.
		p = min(d.boundary, min(len(d.injected), len(next)))
	}

	e := Edit{
		Delete: len(d.injected) - p,
		Append: string(next[p:]),
	}
	d.injected = append(d.injected[:p], next[p:]...)
	if lcp > d.boundary {
		d.boundary = lcp
	}
	return e, true
}

func commonPrefix(a, b []rune) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
