package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/toro1221/talki/history"
	"github.com/toro1221/talki/hotkey"
	"github.com/toro1221/talki/inject"
	"github.com/toro1221/talki/keyboard"
	"github.com/toro1221/talki/transcribe"
)

// fakeCapture hands the sample handler back to the test so it can feed
// audio in.
type fakeCapture struct {
	mu      sync.Mutex
	handler func([]float32)
	started int
	stopped int
}

func (f *fakeCapture) Start(handler func([]float32)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
	f.started++
	return nil
}

func (f *fakeCapture) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = nil
	f.stopped++
	return nil
}

func (f *fakeCapture) SampleRate() int { return 16000 }

func (f *fakeCapture) startedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

func (f *fakeCapture) stoppedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func (f *fakeCapture) feed(samples []float32) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(samples)
	}
}

// scriptedEngine returns texts in order, sticking on the last one.
type scriptedEngine struct {
	mu    sync.Mutex
	texts []string
	calls int
}

func (s *scriptedEngine) Name() string { return "scripted" }

func (s *scriptedEngine) Transcribe(ctx context.Context, samples []float32, final bool) (transcribe.Hypothesis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.texts) {
		i = len(s.texts) - 1
	}
	s.calls++
	return transcribe.Hypothesis{Text: s.texts[i], Final: final, ProducedAt: time.Now()}, nil
}

func (s *scriptedEngine) Close() error { return nil }

// screenInjector applies edits to an in-memory string.
type screenInjector struct {
	mu     sync.Mutex
	screen []rune
}

func (s *screenInjector) Apply(e inject.Edit) (inject.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = s.screen[:len(s.screen)-e.Delete]
	s.screen = append(s.screen, []rune(e.Append)...)
	return inject.Result{Deleted: e.Delete, Typed: len([]rune(e.Append))}, nil
}

func (s *screenInjector) text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.screen)
}

type memHistory struct {
	mu      sync.Mutex
	entries []history.Entry
}

func (m *memHistory) Add(e history.Entry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return e.ID, nil
}

func (m *memHistory) all() []history.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]history.Entry(nil), m.entries...)
}

type harness struct {
	events  chan keyboard.Edge
	capture *fakeCapture
	screen  *screenInjector
	hist    *memHistory
	cancel  context.CancelFunc
	done    chan struct{}
}

func startHarness(t *testing.T, engine transcribe.Engine) *harness {
	t.Helper()
	m, err := hotkey.NewMachine(keyboard.KeyF9, keyboard.KeyF10)
	if err != nil {
		t.Fatal(err)
	}

	h := &harness{
		events:  make(chan keyboard.Edge),
		capture: &fakeCapture{},
		screen:  &screenInjector{},
		hist:    &memHistory{},
		done:    make(chan struct{}),
	}

	ctrl := New(Config{
		Machine:  m,
		Events:   h.events,
		Capture:  h.capture,
		Engine:   engine,
		Injector: h.screen,
		History:  h.hist,
		Interval: 300 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() {
		defer close(h.done)
		ctrl.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-h.done
	})
	return h
}

func TestRecordingEndToEnd(t *testing.T) {
	engine := &scriptedEngine{texts: []string{"hello", "hello world"}}
	h := startHarness(t, engine)

	h.events <- keyboard.Edge{Key: keyboard.KeyF9, Pressed: true}

	// Wait for capture to start, then feed a second of audio.
	deadline := time.Now().Add(time.Second)
	for h.capture.startedCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	h.capture.feed(make([]float32, 16000))

	// Let at least one scheduled pass land before stopping.
	time.Sleep(500 * time.Millisecond)
	h.events <- keyboard.Edge{Key: keyboard.KeyF9, Pressed: false}

	// Stop blocks inside the controller until the final hypothesis is
	// injected, so polling briefly is enough.
	deadline = time.Now().Add(2 * time.Second)
	for h.screen.text() != "hello world" && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if got := h.screen.text(); got != "hello world" {
		t.Fatalf("screen = %q, want %q", got, "hello world")
	}

	entries := h.hist.all()
	if len(entries) != 1 {
		t.Fatalf("history has %d entries, want 1", len(entries))
	}
	if entries[0].Text != "hello world" || entries[0].Mode != "hold-to-talk" {
		t.Fatalf("history entry = %+v", entries[0])
	}
	if h.capture.stoppedCount() != 1 {
		t.Fatalf("capture stopped %d times, want 1", h.capture.stoppedCount())
	}
}

func TestShutdownFlushesActiveRecording(t *testing.T) {
	engine := &scriptedEngine{texts: []string{"still here"}}
	h := startHarness(t, engine)

	h.events <- keyboard.Edge{Key: keyboard.KeyF10, Pressed: true}
	deadline := time.Now().Add(time.Second)
	for h.capture.startedCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	h.capture.feed(make([]float32, 16000))
	time.Sleep(400 * time.Millisecond)

	// Cancel the run context with the recording still active; the
	// controller must stop and flush it before returning.
	h.cancel()
	<-h.done

	if got := h.screen.text(); got != "still here" {
		t.Fatalf("screen = %q after shutdown", got)
	}
	entries := h.hist.all()
	if len(entries) != 1 || entries[0].Mode != "toggle" {
		t.Fatalf("history = %+v", entries)
	}
	if h.capture.stoppedCount() != 1 {
		t.Fatalf("capture stopped %d times, want 1", h.capture.stoppedCount())
	}
}

func TestSilentRecordingLeavesNothing(t *testing.T) {
	engine := &scriptedEngine{texts: []string{""}}
	h := startHarness(t, engine)

	// Start and immediately stop; no audio ever reaches the buffer.
	h.events <- keyboard.Edge{Key: keyboard.KeyF9, Pressed: true}
	time.Sleep(50 * time.Millisecond)
	h.events <- keyboard.Edge{Key: keyboard.KeyF9, Pressed: false}

	// Drain the stop by sending another edge; Run handles edges one at
	// a time, so this confirms stop finished.
	h.events <- keyboard.Edge{Key: keyboard.KeyEscape, Pressed: true}

	if got := h.screen.text(); got != "" {
		t.Fatalf("screen = %q, want empty", got)
	}
}
