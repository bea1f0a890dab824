// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/toro1221/talki/keyboard"
)

const (
	appName        = "talki"
	configFileName = "config.json"
)

// Injection mode names.
const (
	InjectDirect    = "direct"
	InjectClipboard = "clipboard"
)

// Engine names.
const (
	EngineWhisperAPI   = "whisper-api"
	EngineWhisperLocal = "whisper-local"
)

// Config represents the application configuration.
type Config struct {
	// Hotkeys. Both keys are intercepted at the OS level while the app
	// runs; they must name different keys.
	PushToTalkKey string `json:"push_to_talk_key"`
	ToggleKey     string `json:"toggle_record_key"`

	// Transcription engine: "whisper-api" or "whisper-local".
	Engine    string `json:"engine"`
	Model     string `json:"model,omitempty"`      // API model name
	ModelPath string `json:"model_path,omitempty"` // local ggml model file
	Language  string `json:"language,omitempty"`   // empty for auto-detect

	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`

	// Input device name substring; empty uses the system default.
	InputDevice string `json:"input_device,omitempty"`

	// How text reaches the focused app: "direct" or "clipboard".
	InjectionMode string `json:"injection_mode"`

	// Milliseconds between re-transcription passes.
	TranscribeIntervalMS int `json:"transcribe_interval_ms"`

	// Days to keep finished recordings in the history store, 0 keeps
	// them forever.
	HistoryDays int `json:"history_days"`

	LogLevel string `json:"log_level,omitempty"` // debug, info, warn, error
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		PushToTalkKey:        "f9",
		ToggleKey:            "f10",
		Engine:               EngineWhisperAPI,
		Model:                "whisper-1",
		InjectionMode:        InjectDirect,
		TranscribeIntervalMS: 1500,
		HistoryDays:          30,
		LogLevel:             "info",
	}
}

// Load loads configuration from the config file.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	ptt, err := keyboard.ParseKey(c.PushToTalkKey)
	if err != nil {
		return fmt.Errorf("push_to_talk_key: %w", err)
	}
	toggle, err := keyboard.ParseKey(c.ToggleKey)
	if err != nil {
		return fmt.Errorf("toggle_record_key: %w", err)
	}
	if ptt == toggle {
		return fmt.Errorf("push_to_talk_key and toggle_record_key are both %q", c.PushToTalkKey)
	}

	switch c.Engine {
	case EngineWhisperAPI, EngineWhisperLocal:
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	switch c.InjectionMode {
	case InjectDirect, InjectClipboard:
	default:
		return fmt.Errorf("unknown injection_mode %q", c.InjectionMode)
	}
	if c.TranscribeIntervalMS < 0 {
		return fmt.Errorf("transcribe_interval_ms must not be negative")
	}
	return nil
}

// Keys returns the parsed hotkeys. Call Validate first.
func (c *Config) Keys() (pushToTalk, toggle keyboard.Key) {
	pushToTalk, _ = keyboard.ParseKey(c.PushToTalkKey)
	toggle, _ = keyboard.ParseKey(c.ToggleKey)
	return pushToTalk, toggle
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// DataDir returns the directory for application state such as the
// recording history.
func DataDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName), nil
}
