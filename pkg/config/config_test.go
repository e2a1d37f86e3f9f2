package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.PreferDST)
	assert.Equal(t, []string{"q", "exit", "quit"}, cfg.QuitWords)
	assert.Equal(t, cfg, Normalize(cfg))
}

func TestNormalize(t *testing.T) {
	cfg := Normalize(Config{
		QuitWords:        []string{" Bye ", "", "STOP"},
		Workers:          -3,
		RepliesPerSecond: -1,
	})
	assert.Equal(t, []string{"bye", "stop"}, cfg.QuitWords)
	assert.Equal(t, 1, cfg.Workers)
	assert.Zero(t, cfg.RepliesPerSecond)
	assert.Equal(t, 1, cfg.ReplyBurst)
	assert.Equal(t, "https://api.telegram.org", cfg.TelegramAPI)

	cfg = Normalize(Config{
		TelegramTokenFile:  " ./token ",
		TelegramAPI:        "http://localhost:8081/",
		PollTimeoutSeconds: -5,
	})
	assert.Equal(t, "./token", cfg.TelegramTokenFile)
	assert.Equal(t, "http://localhost:8081", cfg.TelegramAPI)
	assert.Zero(t, cfg.PollTimeoutSeconds)

	cfg = Normalize(Config{QuitWords: []string{"  "}})
	assert.Equal(t, DefaultConfig().QuitWords, cfg.QuitWords)
}

func TestLoad(t *testing.T) {
	cfg, err := Load(strings.NewReader(`
verbose: true
prefer_dst: false
prompt: "time? "
quit_words: [bye]
workers: 8
`))
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.False(t, cfg.PreferDST)
	assert.Equal(t, "time? ", cfg.Prompt)
	assert.Equal(t, []string{"bye"}, cfg.QuitWords)
	assert.Equal(t, 8, cfg.Workers)
	// Keys that are absent keep their defaults.
	assert.Equal(t, "< ", cfg.ReplyMarker)
	assert.Equal(t, 25.0, cfg.RepliesPerSecond)
}

func TestLoadEmptyDocument(t *testing.T) {
	cfg, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(strings.NewReader("prefer_dts: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "timebot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("replies_per_second: 0\nreply_burst: 2\n"), 0o644))
	cfg, err = LoadFile(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.RepliesPerSecond)
	assert.Equal(t, 2, cfg.ReplyBurst)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
