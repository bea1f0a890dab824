// Package audio provides microphone capture and the append-only sample
// buffer a recording session accumulates into.
package audio

import "errors"

// ErrNotCapturing is returned when stopping a capture that is not running.
var ErrNotCapturing = errors.New("not capturing audio")

// ErrAlreadyCapturing is returned when starting a capture that is running.
var ErrAlreadyCapturing = errors.New("already capturing audio")

// Capture delivers microphone samples to a handler until stopped.
type Capture interface {
	// Start begins capture, invoking handler with each chunk of mono
	// float32 samples. The handler must not retain the slice.
	Start(handler func(samples []float32)) error
	// Stop ends capture. No handler calls happen after Stop returns.
	Stop() error
	// SampleRate reports the capture rate in Hz.
	SampleRate() int
}

// Config holds configuration for microphone capture.
type Config struct {
	SampleRate int    // default 16000 Hz, what Whisper expects
	Device     string // input device name substring, empty for the default
}

// DefaultConfig returns the default capture configuration.
func DefaultConfig() Config {
	return Config{SampleRate: 16000}
}
