package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for the bot.
type Config struct {
	Verbose bool `yaml:"verbose"`
	// PreferDST reads wall times repeated by a DST transition as daylight time.
	PreferDST bool `yaml:"prefer_dst"`

	Prompt      string   `yaml:"prompt"`
	ReplyMarker string   `yaml:"reply_marker"`
	QuitWords   []string `yaml:"quit_words"`

	Workers          int     `yaml:"workers"`
	RepliesPerSecond float64 `yaml:"replies_per_second"`
	ReplyBurst       int     `yaml:"reply_burst"`

	// TelegramTokenFile selects the Bot API transport in serve mode.
	TelegramTokenFile  string `yaml:"telegram_token_file"`
	TelegramAPI        string `yaml:"telegram_api"`
	PollTimeoutSeconds int    `yaml:"poll_timeout_seconds"`
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Verbose:          false,
		PreferDST:        true,
		Prompt:           "> ",
		ReplyMarker:      "< ",
		QuitWords:        []string{"q", "exit", "quit"},
		Workers:          4,
		RepliesPerSecond: 25,
		ReplyBurst:       5,

		TelegramAPI:        "https://api.telegram.org",
		PollTimeoutSeconds: 30,
	}
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	defaults := DefaultConfig()

	quitWords := make([]string, 0, len(cfg.QuitWords))
	for _, word := range cfg.QuitWords {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		quitWords = append(quitWords, word)
	}
	if len(quitWords) == 0 {
		quitWords = defaults.QuitWords
	}
	cfg.QuitWords = quitWords

	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RepliesPerSecond < 0 {
		cfg.RepliesPerSecond = 0
	}
	if cfg.ReplyBurst <= 0 {
		cfg.ReplyBurst = 1
	}

	cfg.TelegramTokenFile = strings.TrimSpace(cfg.TelegramTokenFile)
	cfg.TelegramAPI = strings.TrimRight(strings.TrimSpace(cfg.TelegramAPI), "/")
	if cfg.TelegramAPI == "" {
		cfg.TelegramAPI = defaults.TelegramAPI
	}
	if cfg.PollTimeoutSeconds < 0 {
		cfg.PollTimeoutSeconds = 0
	}
	return cfg
}

// Load decodes a YAML document on top of DefaultConfig. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func Load(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return Normalize(cfg), nil
}

// LoadFile reads the YAML file at path. An empty path yields the defaults.
func LoadFile(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Normalize(DefaultConfig()), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Load(bytes.NewReader(content))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
