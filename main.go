package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/toro1221/talki/audio"
	"github.com/toro1221/talki/config"
	"github.com/toro1221/talki/history"
	"github.com/toro1221/talki/hotkey"
	"github.com/toro1221/talki/inject"
	"github.com/toro1221/talki/keyboard"
	"github.com/toro1221/talki/session"
	"github.com/toro1221/talki/transcribe"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	showHistory := flag.Int("history", 0, "print the last N recordings and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("talki %s (%s, %s)\n", version, commit, date)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	if *showHistory > 0 {
		if err := printHistory(cfg, *showHistory); err != nil {
			slog.Error("read history", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		slog.Error("talki exited", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	})))
}

func run(cfg *config.Config) error {
	slog.Info("starting talki", "version", version,
		"push_to_talk", cfg.PushToTalkKey, "toggle", cfg.ToggleKey,
		"engine", cfg.Engine, "injection", cfg.InjectionMode)

	ptt, toggle := cfg.Keys()
	machine, err := hotkey.NewMachine(ptt, toggle)
	if err != nil {
		return fmt.Errorf("hotkeys: %w", err)
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return fmt.Errorf("transcription engine: %w", err)
	}
	defer engine.Close()

	micCfg := audio.DefaultConfig()
	micCfg.Device = cfg.InputDevice
	mic, err := audio.NewMic(micCfg)
	if err != nil {
		return fmt.Errorf("microphone: %w", err)
	}
	defer mic.Close()

	source, err := keyboard.Open(keyboard.Config{Suppress: machine.Keys()})
	if err != nil {
		if errors.Is(err, keyboard.ErrPermissionDenied) {
			return fmt.Errorf("no permission to read input devices, add your user to the input group: %w", err)
		}
		return fmt.Errorf("open keyboard: %w", err)
	}
	// The grab on the hotkeys must come off on every exit path, or the
	// keys stay dead for the whole desktop.
	defer func() {
		if err := source.Close(); err != nil {
			slog.Error("close keyboard source", "error", err)
		}
	}()

	var injector session.Injector
	switch cfg.InjectionMode {
	case config.InjectClipboard:
		injector = inject.NewClipboard(source)
	default:
		injector = inject.NewDirect(source)
	}

	var hist session.Historian
	dataDir, err := config.DataDir()
	if err == nil {
		store, herr := history.Open(filepath.Join(dataDir, "history"),
			time.Duration(cfg.HistoryDays)*24*time.Hour)
		if herr != nil {
			slog.Warn("history disabled", "error", herr)
		} else {
			defer store.Close()
			hist = store
		}
	}

	ctrl := session.New(session.Config{
		Machine:  machine,
		Events:   source.Events(),
		Capture:  mic,
		Engine:   engine,
		Injector: injector,
		History:  hist,
		Interval: time.Duration(cfg.TranscribeIntervalMS) * time.Millisecond,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("ready, hold the push-to-talk key to dictate")
	ctrl.Run(ctx)
	slog.Info("shutting down")
	return nil
}

func newEngine(cfg *config.Config) (transcribe.Engine, error) {
	switch cfg.Engine {
	case config.EngineWhisperLocal:
		return transcribe.NewWhisperLocal(transcribe.WhisperLocalConfig{
			ModelPath: cfg.ModelPath,
			Language:  cfg.Language,
		})
	default:
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return transcribe.NewWhisperAPI(transcribe.WhisperAPIConfig{
			APIKey:   apiKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Language: cfg.Language,
		})
	}
}

func printHistory(cfg *config.Config, n int) error {
	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}
	store, err := history.Open(filepath.Join(dataDir, "history"),
		time.Duration(cfg.HistoryDays)*24*time.Hour)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s  %-12s %6s  %s\n",
			e.StartedAt.Format("2006-01-02 15:04:05"), e.Mode,
			e.Duration.Round(time.Second), e.Text)
	}
	return nil
}
