package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// WhisperLocal transcribes with a local whisper.cpp CLI binary.
type WhisperLocal struct {
	binPath   string
	modelPath string
	language  string
}

// WhisperLocalConfig holds configuration for WhisperLocal.
type WhisperLocalConfig struct {
	ModelPath string // path to a ggml model file
	BinPath   string // optional, found on PATH if empty
	Language  string // source language code, empty for auto-detect
}

// NewWhisperLocal creates a local transcription engine. It fails if the
// whisper.cpp binary or the model file cannot be found.
func NewWhisperLocal(cfg WhisperLocalConfig) (*WhisperLocal, error) {
	binPath := cfg.BinPath
	if binPath == "" {
		binPath = findWhisperBinary()
	}
	if binPath == "" {
		return nil, fmt.Errorf("whisper.cpp binary not found, install whisper-cli or set its path")
	}
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("model path is required for local transcription")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	return &WhisperLocal{
		binPath:   binPath,
		modelPath: cfg.ModelPath,
		language:  cfg.Language,
	}, nil
}

func (w *WhisperLocal) Name() string { return "whisper-local" }

// Transcribe writes the recording to a temp WAV file and runs whisper.cpp
// over it.
func (w *WhisperLocal) Transcribe(ctx context.Context, samples []float32, final bool) (Hypothesis, error) {
	if len(samples) == 0 {
		return Hypothesis{}, ErrNoAudio
	}

	audioPath := filepath.Join(os.TempDir(), fmt.Sprintf("talki_%d.wav", time.Now().UnixNano()))
	if err := os.WriteFile(audioPath, encodeWAV(samples, 16000), 0o644); err != nil {
		return Hypothesis{}, fmt.Errorf("write audio file: %w", err)
	}
	defer os.Remove(audioPath)

	args := []string{
		"-m", w.modelPath,
		"-f", audioPath,
		"-oj",
		"--no-prints",
	}
	if w.language != "" && w.language != "auto" {
		args = append(args, "-l", w.language)
	}

	cmd := exec.CommandContext(ctx, w.binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Hypothesis{}, fmt.Errorf("whisper.cpp: %w, stderr: %s", err, stderr.String())
	}

	var out whisperCppOutput
	text := ""
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		// Older builds print plain text despite -oj.
		text = stdout.String()
	} else {
		for _, seg := range out.Transcription {
			text += seg.Text
		}
	}

	return Hypothesis{
		Text:       strings.TrimSpace(text),
		Final:      final,
		ProducedAt: time.Now(),
	}, nil
}

func (w *WhisperLocal) Close() error { return nil }

func findWhisperBinary() string {
	// whisper-cli is the Homebrew name, main the in-tree build name.
	names := []string{"whisper-cli", "whisper-cpp", "whisper", "main"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	homeDir, _ := os.UserHomeDir()
	locations := []string{
		"/opt/homebrew/bin",
		"/usr/local/bin",
		filepath.Join(homeDir, ".local", "bin"),
		filepath.Join(homeDir, "whisper.cpp"),
	}
	for _, loc := range locations {
		for _, name := range names {
			path := filepath.Join(loc, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// whisperCppOutput is the JSON that whisper.cpp emits with -oj.
type whisperCppOutput struct {
	Transcription []struct {
		Text string `json:"text"`
	} `json:"transcription"`
}
