package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Mic captures mono float32 samples from an input device.
type Mic struct {
	sampleRate int
	device     string

	mu        sync.Mutex
	capturing bool
	stop      chan struct{}
	done      chan struct{}
}

// NewMic creates a microphone capture. PortAudio is initialized once here
// and stays initialized for the life of the process.
func NewMic(cfg Config) (*Mic, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	return &Mic{sampleRate: cfg.SampleRate, device: cfg.Device}, nil
}

// SampleRate reports the capture rate in Hz.
func (m *Mic) SampleRate() int { return m.sampleRate }

// Start opens the default input stream and delivers samples to handler
// from a background goroutine until Stop is called.
func (m *Mic) Start(handler func(samples []float32)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.capturing {
		return ErrAlreadyCapturing
	}

	in := make([]float32, 1024)
	stream, err := m.openStream(in)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start input stream: %w", err)
	}

	m.capturing = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	go m.readLoop(stream, in, handler, m.stop, m.done)
	return nil
}

// openStream opens the named input device, or the default one when no
// name is configured or the name matches nothing.
func (m *Mic) openStream(in []float32) (*portaudio.Stream, error) {
	if m.device == "" {
		return portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(in), in)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	for _, dev := range devices {
		if dev.MaxInputChannels < 1 || !strings.Contains(dev.Name, m.device) {
			continue
		}
		params := portaudio.StreamParameters{
			Input: portaudio.StreamDeviceParameters{
				Device:   dev,
				Channels: 1,
				Latency:  dev.DefaultLowInputLatency,
			},
			SampleRate:      float64(m.sampleRate),
			FramesPerBuffer: len(in),
		}
		return portaudio.OpenStream(params, in)
	}
	slog.Warn("input device not found, using default", "device", m.device)
	return portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(in), in)
}

func (m *Mic) readLoop(stream *portaudio.Stream, in []float32, handler func([]float32), stop, done chan struct{}) {
	defer close(done)
	defer stream.Close()
	defer stream.Stop()

	for {
		select {
		case <-stop:
			return
		default:
		}
		if err := stream.Read(); err != nil {
			// Overflows happen when the process stalls briefly; the
			// stream keeps going, so only drop this chunk.
			if errors.Is(err, portaudio.InputOverflowed) {
				slog.Debug("input overflowed, dropping chunk")
				continue
			}
			slog.Error("read input stream", "error", err)
			return
		}
		handler(in)
	}
}

// Stop ends capture and waits for the read loop to exit, so no handler
// call happens after it returns.
func (m *Mic) Stop() error {
	m.mu.Lock()
	if !m.capturing {
		m.mu.Unlock()
		return ErrNotCapturing
	}
	m.capturing = false
	stop, done := m.stop, m.done
	m.mu.Unlock()

	close(stop)
	<-done
	return nil
}

// Close releases PortAudio.
func (m *Mic) Close() error {
	return portaudio.Terminate()
}
