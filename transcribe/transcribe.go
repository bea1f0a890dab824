// Package transcribe provides speech-to-text engines and the scheduler
// that re-transcribes a growing recording on a fixed cadence.
package transcribe

import (
	"context"
	"errors"
	"time"
)

// ErrNoAudio is returned when there is not enough audio to transcribe.
var ErrNoAudio = errors.New("not enough audio to transcribe")

// Hypothesis is one transcription of the recording so far. A later
// hypothesis for the same recording supersedes an earlier one entirely.
type Hypothesis struct {
	Text       string
	Final      bool // no further hypotheses follow for this recording
	ProducedAt time.Time
}

// Engine converts audio to text. Implementations must be safe to call
// from a single goroutine at a time.
type Engine interface {
	// Name returns the engine identifier.
	Name() string

	// Transcribe converts mono float32 samples at 16000 Hz to text.
	// final marks the closing pass after the recording stopped.
	Transcribe(ctx context.Context, samples []float32, final bool) (Hypothesis, error)

	// Close releases resources held by the engine.
	Close() error
}
