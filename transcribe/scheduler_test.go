package transcribe

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeSource serves a fixed-size recording.
type fakeSource struct {
	mu      sync.Mutex
	samples []float32
}

func (f *fakeSource) Snapshot() []float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]float32, len(f.samples))
	copy(out, f.samples)
	return out
}

func (f *fakeSource) Duration() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return time.Duration(len(f.samples)) * time.Second / 16000
}

// fakeEngine numbers its passes and can block until released.
type fakeEngine struct {
	mu      sync.Mutex
	calls   int
	block   chan struct{} // when set, Transcribe waits on it
	failAll bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Transcribe(ctx context.Context, samples []float32, final bool) (Hypothesis, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	block := f.block
	fail := f.failAll
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return Hypothesis{}, ctx.Err()
		}
	}
	if fail {
		return Hypothesis{}, fmt.Errorf("pass %d failed", n)
	}
	return Hypothesis{Text: fmt.Sprintf("pass %d", n), Final: final, ProducedAt: time.Now()}, nil
}

func (f *fakeEngine) Close() error { return nil }

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func secondOfAudio() []float32 { return make([]float32, 16000) }

func runScheduler(t *testing.T, cfg SchedulerConfig) (cancel func(), done chan struct{}) {
	t.Helper()
	s, err := NewScheduler(cfg)
	if err != nil {
		t.Fatal(err)
	}
	ctx, stop := context.WithCancel(context.Background())
	done = make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return stop, done
}

func TestSchedulerDeliversFinalOnStop(t *testing.T) {
	engine := &fakeEngine{}
	var mu sync.Mutex
	var got []Hypothesis

	cancel, done := runScheduler(t, SchedulerConfig{
		Engine:   engine,
		Source:   &fakeSource{samples: secondOfAudio()},
		Interval: 310 * time.Millisecond,
		OnHypothesis: func(h Hypothesis) {
			mu.Lock()
			got = append(got, h)
			mu.Unlock()
		},
	})

	time.Sleep(700 * time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(got) == 0 {
		t.Fatal("no hypotheses delivered")
	}
	last := got[len(got)-1]
	if !last.Final {
		t.Fatalf("last hypothesis not final: %+v", last)
	}
	for _, h := range got[:len(got)-1] {
		if h.Final {
			t.Fatalf("non-last hypothesis marked final: %+v", h)
		}
	}
}

func TestSchedulerSkipsTicksWhileBusy(t *testing.T) {
	release := make(chan struct{})
	engine := &fakeEngine{block: release}

	cancel, done := runScheduler(t, SchedulerConfig{
		Engine:   engine,
		Source:   &fakeSource{samples: secondOfAudio()},
		Interval: 305 * time.Millisecond,
	})

	// The first tick starts a pass that blocks; the next ticks must be
	// skipped, not queued.
	time.Sleep(1200 * time.Millisecond)
	if got := engine.callCount(); got != 1 {
		close(release)
		cancel()
		<-done
		t.Fatalf("engine called %d times while busy, want 1", got)
	}

	close(release)
	cancel()
	<-done
}

func TestSchedulerInFlightPassSurvivesStop(t *testing.T) {
	release := make(chan struct{})
	engine := &fakeEngine{block: release}
	var mu sync.Mutex
	var got []Hypothesis

	cancel, done := runScheduler(t, SchedulerConfig{
		Engine:   engine,
		Source:   &fakeSource{samples: secondOfAudio()},
		Interval: 305 * time.Millisecond,
		OnHypothesis: func(h Hypothesis) {
			mu.Lock()
			got = append(got, h)
			mu.Unlock()
		},
	})

	// Wait for the first pass to be in flight, then stop the recording
	// while it is still blocked.
	deadline := time.Now().Add(2 * time.Second)
	for engine.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	// Stopping must not abort the in-flight pass; once it completes its
	// result is still delivered, before the final one.
	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(got) < 2 {
		t.Fatalf("got %d hypotheses, want the in-flight pass plus a final", len(got))
	}
	if got[0].Text != "pass 1" || got[0].Final {
		t.Fatalf("in-flight result dropped or mangled: %+v", got[0])
	}
	if last := got[len(got)-1]; !last.Final {
		t.Fatalf("last hypothesis not final: %+v", last)
	}
}

func TestSchedulerSkipsShortRecordings(t *testing.T) {
	engine := &fakeEngine{}
	var mu sync.Mutex
	var got []Hypothesis

	// 100ms of audio is below the transcription floor.
	cancel, done := runScheduler(t, SchedulerConfig{
		Engine:   engine,
		Source:   &fakeSource{samples: make([]float32, 1600)},
		Interval: 305 * time.Millisecond,
		OnHypothesis: func(h Hypothesis) {
			mu.Lock()
			got = append(got, h)
			mu.Unlock()
		},
	})

	time.Sleep(700 * time.Millisecond)
	cancel()
	<-done

	if engine.callCount() != 0 {
		t.Fatalf("engine called %d times for a too-short recording", engine.callCount())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || !got[0].Final || got[0].Text != "" {
		t.Fatalf("want one empty final hypothesis, got %+v", got)
	}
}

func TestSchedulerFinalFailureRepeatsLastText(t *testing.T) {
	engine := &fakeEngine{}
	var mu sync.Mutex
	var got []Hypothesis

	cancel, done := runScheduler(t, SchedulerConfig{
		Engine:   engine,
		Source:   &fakeSource{samples: secondOfAudio()},
		Interval: 310 * time.Millisecond,
		OnHypothesis: func(h Hypothesis) {
			mu.Lock()
			got = append(got, h)
			mu.Unlock()
		},
	})

	// Let at least one pass succeed, then make the final pass fail.
	time.Sleep(700 * time.Millisecond)
	engine.mu.Lock()
	engine.failAll = true
	engine.mu.Unlock()
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(got) < 2 {
		t.Fatalf("want at least one pass plus a final, got %d", len(got))
	}
	last := got[len(got)-1]
	prev := got[len(got)-2]
	if !last.Final {
		t.Fatalf("last hypothesis not final: %+v", last)
	}
	if last.Text != prev.Text {
		t.Fatalf("failed final changed the text: %q -> %q", prev.Text, last.Text)
	}
}

func TestNewSchedulerValidates(t *testing.T) {
	if _, err := NewScheduler(SchedulerConfig{Source: &fakeSource{}}); err == nil {
		t.Fatal("expected error without engine")
	}
	if _, err := NewScheduler(SchedulerConfig{Engine: &fakeEngine{}}); err == nil {
		t.Fatal("expected error without source")
	}
}
