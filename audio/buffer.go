package audio

import (
	"sync"
	"time"
)

// Buffer is an append-only sample buffer for one recording session.
// Samples are only ever added; snapshots are taken of the whole buffer.
type Buffer struct {
	mu         sync.Mutex
	samples    []float32
	sampleRate int
}

// NewBuffer creates an empty buffer for samples at the given rate.
func NewBuffer(sampleRate int) *Buffer {
	return &Buffer{sampleRate: sampleRate}
}

// Append adds samples to the end of the buffer. The input is copied.
func (b *Buffer) Append(samples []float32) {
	if len(samples) == 0 {
		return
	}
	b.mu.Lock()
	b.samples = append(b.samples, samples...)
	b.mu.Unlock()
}

// Snapshot returns a copy of everything captured so far.
func (b *Buffer) Snapshot() []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]float32, len(b.samples))
	copy(out, b.samples)
	return out
}

// Len returns the number of samples captured so far.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// Duration returns the captured audio length.
func (b *Buffer) Duration() time.Duration {
	b.mu.Lock()
	n := len(b.samples)
	b.mu.Unlock()
	return time.Duration(n) * time.Second / time.Duration(b.sampleRate)
}

// SampleRate reports the buffer's sample rate in Hz.
func (b *Buffer) SampleRate() int { return b.sampleRate }
