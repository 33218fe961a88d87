// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName        = "tapedeck"
	configFileName = "config.json"
)

// Config represents the application configuration.
type Config struct {
	// Capture tool overrides. Empty means discover on PATH (ffmpeg) or in
	// the usual install locations (helper).
	FFmpegPath string `json:"ffmpeg_path,omitempty"`
	HelperPath string `json:"helper_path,omitempty"`

	// WorkDir is where in-flight and saved recordings land. Empty means a
	// per-user directory under the system temp dir.
	WorkDir string `json:"work_dir,omitempty"`

	// Device names handed to ffmpeg. Empty means the platform default.
	SystemDevice string `json:"system_device,omitempty"`
	MicDevice    string `json:"mic_device,omitempty"`

	// Transcription settings.
	OpenAIAPIKey    string `json:"openai_api_key,omitempty"`
	TranscribeModel string `json:"transcribe_model,omitempty"`

	// DisableHotkey turns off the global recording shortcut. Off by
	// default so a fresh config gets the hotkey.
	DisableHotkey bool `json:"disable_hotkey,omitempty"`
}

// Load loads configuration from the config file.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom loads configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}
	return c.SaveTo(path)
}

// SaveTo persists the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// HotkeyEnabled reports whether the global shortcut should be installed.
func (c *Config) HotkeyEnabled() bool {
	return !c.DisableHotkey
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

func defaultConfig() *Config {
	return &Config{}
}
