// Package session runs recordings: it owns the lifecycle from a hotkey
// command through capture, repeated transcription, and text injection.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/toro1221/talki/audio"
	"github.com/toro1221/talki/history"
	"github.com/toro1221/talki/hotkey"
	"github.com/toro1221/talki/inject"
	"github.com/toro1221/talki/keyboard"
	"github.com/toro1221/talki/transcribe"
)

// Injector applies edits to the focused application.
type Injector interface {
	Apply(e inject.Edit) (inject.Result, error)
}

// Historian records finished recordings.
type Historian interface {
	Add(e history.Entry) (string, error)
}

// Config holds the collaborators a Controller drives.
type Config struct {
	Machine  *hotkey.Machine
	Events   <-chan keyboard.Edge
	Capture  audio.Capture
	Engine   transcribe.Engine
	Injector Injector
	History  Historian     // optional
	Interval time.Duration // re-transcription cadence
}

// Controller reads hotkey edges and runs at most one recording at a time.
type Controller struct {
	cfg Config

	active *recording
}

// recording is one push-to-talk or toggle session.
type recording struct {
	id        string
	mode      hotkey.Mode
	startedAt time.Time
	buffer    *audio.Buffer
	differ    *inject.Differ

	cancel context.CancelFunc
	hyps   chan transcribe.Hypothesis
	// closed when the scheduler exited and every edit was applied
	done chan struct{}
}

// New creates a controller. All collaborators are required except History.
func New(cfg Config) *Controller {
	return &Controller{cfg: cfg}
}

// Run consumes key edges until ctx is cancelled. An active recording is
// stopped and flushed before Run returns, so the final hypothesis always
// reaches the focused app.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if cmd, ok := c.cfg.Machine.Stop(); ok {
				c.handle(cmd)
			}
			return
		case edge, ok := <-c.cfg.Events:
			if !ok {
				if cmd, ok := c.cfg.Machine.Stop(); ok {
					c.handle(cmd)
				}
				return
			}
			if cmd, ok := c.cfg.Machine.Feed(edge); ok {
				c.handle(cmd)
			}
		}
	}
}

func (c *Controller) handle(cmd hotkey.Command) {
	switch cmd.Action {
	case hotkey.ActionStart:
		c.start(cmd.Mode)
	case hotkey.ActionStop:
		c.stop()
	}
}

func (c *Controller) start(mode hotkey.Mode) {
	if c.active != nil {
		return
	}

	rec := &recording{
		id:        uuid.NewString(),
		mode:      mode,
		startedAt: time.Now(),
		buffer:    audio.NewBuffer(c.cfg.Capture.SampleRate()),
		differ:    inject.NewDiffer(),
		hyps:      make(chan transcribe.Hypothesis, 8),
		done:      make(chan struct{}),
	}

	if err := c.cfg.Capture.Start(rec.buffer.Append); err != nil {
		slog.Error("start audio capture", "error", err)
		return
	}

	sched, err := transcribe.NewScheduler(transcribe.SchedulerConfig{
		Engine:   c.cfg.Engine,
		Source:   rec.buffer,
		Interval: c.cfg.Interval,
		OnHypothesis: func(h transcribe.Hypothesis) {
			rec.hyps <- h
		},
	})
	if err != nil {
		slog.Error("create scheduler", "error", err)
		if serr := c.cfg.Capture.Stop(); serr != nil {
			slog.Error("stop audio capture", "error", serr)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	rec.cancel = cancel

	// The single consumer of hypotheses. Edits for one recording are
	// applied strictly in arrival order; ordering into the focused
	// field is the invariant, not just mutual exclusion.
	go func() {
		defer close(rec.done)
		for h := range rec.hyps {
			edit, ok := rec.differ.Diff(h.Text, h.Final)
			if !ok {
				continue
			}
			res, err := c.cfg.Injector.Apply(edit)
			if err != nil {
				slog.Error("apply edit", "recording", rec.id, "deleted", res.Deleted, "typed", res.Typed, "error", err)
				continue
			}
			if res.Skipped > 0 {
				slog.Warn("characters skipped", "recording", rec.id, "skipped", res.Skipped)
			}
		}
	}()

	go func() {
		sched.Run(ctx)
		close(rec.hyps)
	}()

	c.active = rec
	slog.Info("recording started", "recording", rec.id, "mode", mode)
}

// stop ends the active recording and blocks until the final hypothesis
// has been injected.
func (c *Controller) stop() {
	rec := c.active
	if rec == nil {
		return
	}
	c.active = nil

	if err := c.cfg.Capture.Stop(); err != nil {
		slog.Error("stop audio capture", "error", err)
	}
	rec.cancel()
	<-rec.done

	text := rec.differ.Injected()
	dur := rec.buffer.Duration()
	slog.Info("recording finished", "recording", rec.id, "mode", rec.mode, "duration", dur, "chars", len(text))

	if c.cfg.History != nil {
		_, err := c.cfg.History.Add(history.Entry{
			ID:        rec.id,
			Text:      text,
			Mode:      rec.mode.String(),
			StartedAt: rec.startedAt,
			Duration:  dur,
		})
		if err != nil {
			slog.Warn("record history", "recording", rec.id, "error", err)
		}
	}
}
