//go:build linux

package keyboard

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// evdevSource grabs every keyboard under /dev/input exclusively and re-emits
// all non-suppressed events through a uinput virtual keyboard. Grabbing is
// what makes suppression possible: once grabbed, a device's events reach
// only us, so anything we do not re-emit never reaches the OS input stream.
type evdevSource struct {
	suppress map[uint16]Key
	devices  []*os.File
	out      *uinputDevice
	events   chan Edge
	done     chan struct{}

	wg sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func newSource(cfg Config) (Source, error) {
	suppress := make(map[uint16]Key)
	for k := range suppressSet(cfg.Suppress) {
		code, ok := evdevCode(k)
		if !ok {
			return nil, fmt.Errorf("suppress key %q: %w", k, ErrUnmappableKey)
		}
		suppress[code] = k
	}

	paths, err := keyboardDevicePaths()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w (is the user in the input group?)", ErrDeviceUnavailable)
	}

	s := &evdevSource{
		suppress: suppress,
		events:   make(chan Edge, 64),
		done:     make(chan struct{}),
	}

	for _, path := range paths {
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			if os.IsPermission(err) {
				s.releaseAll()
				return nil, fmt.Errorf("open %s: %w", path, ErrPermissionDenied)
			}
			slog.Warn("skipping input device", "path", path, "error", err)
			continue
		}
		if err := grabDevice(f, true); err != nil {
			slog.Warn("could not grab device", "path", path, "error", err)
			f.Close()
			continue
		}
		s.devices = append(s.devices, f)
	}
	if len(s.devices) == 0 {
		return nil, fmt.Errorf("grab keyboard devices: %w", ErrDeviceUnavailable)
	}

	// The virtual keyboard is created after grabbing so device discovery
	// never picks it up.
	out, err := newUinputDevice(virtualDeviceName)
	if err != nil {
		s.releaseAll()
		return nil, fmt.Errorf("create uinput device: %w", err)
	}
	s.out = out

	for _, dev := range s.devices {
		s.wg.Add(1)
		go s.readLoop(dev)
	}

	slog.Info("keyboard source opened", "devices", len(s.devices), "suppressed", len(suppress))
	return s, nil
}

func (s *evdevSource) Events() <-chan Edge { return s.events }

// readLoop forwards one device's event stream until the device is closed.
func (s *evdevSource) readLoop(dev *os.File) {
	defer s.wg.Done()

	buf := make([]byte, eventSize*64)
	for {
		n, err := dev.Read(buf)
		if err != nil {
			if !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.EOF) {
				slog.Warn("input device read failed", "device", dev.Name(), "error", err)
			}
			return
		}
		for off := 0; off+eventSize <= n; off += eventSize {
			s.handleEvent(decodeEvent(buf[off : off+eventSize]))
		}
	}
}

func (s *evdevSource) handleEvent(ev inputEvent) {
	if ev.typ == evKey {
		if key, ok := s.suppress[ev.code]; ok {
			// Autorepeat (value 2) is neither a press nor a release.
			// The send is guarded so a stalled consumer cannot wedge
			// the read loop, and with it Close, on a full buffer.
			if ev.value == 0 || ev.value == 1 {
				select {
				case s.events <- Edge{Key: key, Pressed: ev.value == 1, When: time.Now()}:
				case <-s.done:
				}
			}
			return
		}
	}
	if ev.typ != evKey && ev.typ != evSyn {
		return
	}
	if err := s.out.writeEvent(ev); err != nil {
		slog.Warn("re-emit event failed", "error", err)
	}
}

func (s *evdevSource) TypeKey(k Key, shift bool) error {
	code, ok := evdevCode(k)
	if !ok {
		return fmt.Errorf("type key %q: %w", k, ErrUnmappableKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.out.typeCode(code, shift)
}

func (s *evdevSource) Backspace(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for i := 0; i < n; i++ {
		if err := s.out.typeCode(codeBackspace, false); err != nil {
			return fmt.Errorf("backspace %d of %d: %w", i+1, n, err)
		}
	}
	return nil
}

func (s *evdevSource) PasteShortcut() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.out.chord(codeLeftCtrl, codeV)
}

// Close ungrabs and closes every device, then destroys the virtual keyboard.
// After Close returns the host keyboard is back to unmodified passthrough.
func (s *evdevSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	s.releaseAll()
	s.wg.Wait()
	close(s.events)

	var err error
	if s.out != nil {
		err = s.out.close()
	}
	slog.Info("keyboard source closed")
	return err
}

// releaseAll ungrabs and closes the devices. Closing alone would release the
// grabs in the kernel, but the explicit ungrab keeps the release synchronous.
func (s *evdevSource) releaseAll() {
	for _, dev := range s.devices {
		if err := grabDevice(dev, false); err != nil && !errors.Is(err, os.ErrClosed) {
			slog.Warn("ungrab device failed", "device", dev.Name(), "error", err)
		}
		dev.Close()
	}
}

// keyboardDevicePaths returns the event devices that look like real
// keyboards: EV_KEY capability including the letter keys.
func keyboardDevicePaths() ([]string, error) {
	matches, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("scan /dev/input: %w", err)
	}
	sort.Strings(matches)

	var paths []string
	for _, path := range matches {
		f, err := os.OpenFile(path, os.O_RDONLY, 0)
		if err != nil {
			continue
		}
		ok := isKeyboard(f)
		f.Close()
		if ok {
			paths = append(paths, path)
		}
	}
	return paths, nil
}
