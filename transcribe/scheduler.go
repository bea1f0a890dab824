package transcribe

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// minInterval is the floor for the re-transcription cadence. Ticking
// faster than this just burns engine calls on near-identical audio.
const minInterval = 300 * time.Millisecond

// minAudio is the least captured audio worth transcribing. Shorter
// snapshots produce hallucinated text on silence.
const minAudio = 300 * time.Millisecond

// passTimeout bounds a single transcription pass.
const passTimeout = 30 * time.Second

// Source is where the scheduler takes audio snapshots from.
type Source interface {
	Snapshot() []float32
	Duration() time.Duration
}

// SchedulerConfig holds configuration for a Scheduler.
type SchedulerConfig struct {
	Engine   Engine
	Source   Source
	Interval time.Duration // default 1500ms, floor 300ms
	// OnHypothesis receives every successful transcription, in order.
	// It is called from the scheduler's goroutines, never concurrently.
	OnHypothesis func(Hypothesis)
}

// Scheduler re-transcribes the whole recording on every tick. Each pass
// covers the complete buffer from the start, so a late pass fully
// supersedes an early one. If a pass is still running when the next tick
// fires, that tick is skipped; nothing is queued or cancelled.
type Scheduler struct {
	engine   Engine
	source   Source
	interval time.Duration
	deliver  func(Hypothesis)

	mu       sync.Mutex
	busy     bool
	lastText string
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler for one recording.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if cfg.Source == nil {
		return nil, errors.New("source is required")
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = 1500 * time.Millisecond
	}
	if interval < minInterval {
		interval = minInterval
	}
	deliver := cfg.OnHypothesis
	if deliver == nil {
		deliver = func(Hypothesis) {}
	}
	return &Scheduler{
		engine:   cfg.Engine,
		source:   cfg.Source,
		interval: interval,
		deliver:  deliver,
	}, nil
}

// Run ticks until ctx is cancelled, then performs the closing pass: it
// waits for any in-flight transcription to finish and deliver its result,
// then transcribes the full recording one last time with the final flag
// set. Run returns after the final hypothesis was delivered.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.finish()
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		slog.Debug("transcription still running, skipping tick")
		return
	}
	s.busy = true
	s.mu.Unlock()

	if s.source.Duration() < minAudio {
		s.clearBusy()
		return
	}
	samples := s.source.Snapshot()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.clearBusy()

		// The pass runs on its own context. Stopping the recording only
		// stops the ticker; work already submitted completes and its
		// result is still applied.
		ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
		defer cancel()

		h, err := s.engine.Transcribe(ctx, samples, false)
		if err != nil {
			slog.Warn("transcription pass failed", "engine", s.engine.Name(), "error", err)
			return
		}
		s.mu.Lock()
		s.lastText = h.Text
		s.mu.Unlock()
		s.deliver(h)
	}()
}

func (s *Scheduler) clearBusy() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// finish waits out the in-flight pass and runs the final one. The final
// pass uses its own context so cancellation of the run context does not
// cut off the closing transcription.
func (s *Scheduler) finish() {
	s.wg.Wait()

	s.mu.Lock()
	lastText := s.lastText
	s.mu.Unlock()

	if s.source.Duration() < minAudio {
		s.deliver(Hypothesis{Text: lastText, Final: true, ProducedAt: time.Now()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
	defer cancel()

	h, err := s.engine.Transcribe(ctx, s.source.Snapshot(), true)
	if err != nil {
		slog.Error("final transcription failed", "engine", s.engine.Name(), "error", err)
		// The recording still has to end. Repeating the last good text
		// closes it without touching what is already injected.
		s.deliver(Hypothesis{Text: lastText, Final: true, ProducedAt: time.Now()})
		return
	}
	s.deliver(h)
}
