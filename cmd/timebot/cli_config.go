package main

import (
	"flag"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	configpkg "github.com/minhyannv/timebot-go/pkg/config"
)

// cliOptions is the parsed command line.
type cliOptions struct {
	Config configpkg.Config
	Serve  bool
}

// parseCLIConfig loads .env, the YAML config file, then flags.
func parseCLIConfig(args []string) (cliOptions, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("timebot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", os.Getenv("TIMEBOT_CONFIG"), "YAML config file (env TIMEBOT_CONFIG)")
	verbose := fs.Bool("verbose", false, "Verbose logging")
	preferDST := fs.Bool("prefer_dst", true, "Read wall times repeated by a DST change as daylight time")
	serve := fs.Bool("serve", false, "Read Bot API updates as JSON lines on stdin and write replies to stdout")
	workers := fs.Int("workers", 0, "Concurrent updates in -serve mode (0 keeps the config value)")
	tokenFile := fs.String("token_file", os.Getenv("TIMEBOT_TOKEN_FILE"), "Bot token file; -serve then polls the Telegram Bot API (env TIMEBOT_TOKEN_FILE)")
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	cfg, err := configpkg.LoadFile(strings.TrimSpace(*configPath))
	if err != nil {
		return cliOptions{}, err
	}

	if strings.TrimSpace(*tokenFile) != "" {
		cfg.TelegramTokenFile = *tokenFile
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "verbose":
			cfg.Verbose = *verbose
		case "prefer_dst":
			cfg.PreferDST = *preferDST
		case "workers":
			cfg.Workers = *workers
		}
	})
	return cliOptions{Config: configpkg.Normalize(cfg), Serve: *serve}, nil
}
