package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// WhisperAPI transcribes through an OpenAI-compatible transcription endpoint.
type WhisperAPI struct {
	client   openai.Client
	model    string
	language string
}

// WhisperAPIConfig holds configuration for WhisperAPI.
type WhisperAPIConfig struct {
	APIKey   string
	BaseURL  string // optional, defaults to the OpenAI API
	Model    string // optional, defaults to "whisper-1"
	Language string // source language code, empty for auto-detect
}

// NewWhisperAPI creates a remote transcription engine.
func NewWhisperAPI(cfg WhisperAPIConfig) (*WhisperAPI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &WhisperAPI{
		client:   openai.NewClient(opts...),
		model:    model,
		language: cfg.Language,
	}, nil
}

func (w *WhisperAPI) Name() string { return "whisper-api" }

// Transcribe sends the whole recording as a WAV file and returns the text.
func (w *WhisperAPI) Transcribe(ctx context.Context, samples []float32, final bool) (Hypothesis, error) {
	if len(samples) == 0 {
		return Hypothesis{}, ErrNoAudio
	}

	wav := encodeWAV(samples, 16000)

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(wav), "audio.wav", "audio/wav"),
		Model: openai.AudioModel(w.model),
	}
	if w.language != "" && w.language != "auto" {
		params.Language = openai.String(w.language)
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return Hypothesis{}, fmt.Errorf("transcription request: %w", err)
	}

	return Hypothesis{
		Text:       strings.TrimSpace(resp.Text),
		Final:      final,
		ProducedAt: time.Now(),
	}, nil
}

func (w *WhisperAPI) Close() error { return nil }
