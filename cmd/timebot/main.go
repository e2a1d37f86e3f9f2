// Package main runs the time zone bot, either as an interactive REPL or as a
// dispatcher over the Telegram Bot API or line-delimited Bot API updates.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/minhyannv/timebot-go/pkg/bot"
	configpkg "github.com/minhyannv/timebot-go/pkg/config"
	"github.com/minhyannv/timebot-go/pkg/interpreter"
	loggerpkg "github.com/minhyannv/timebot-go/pkg/logger"
	"github.com/minhyannv/timebot-go/pkg/zones"
)

// main is the program entry point.
func main() {
	opts, err := parseCLIConfig(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	cfg := opts.Config

	appLogger := loggerpkg.NewWriterLogger(os.Stderr)
	loggerpkg.Debug(cfg.Verbose, appLogger, "config loaded", cfg)

	interp := interpreter.New(zones.Default(),
		interpreter.WithPreferDST(cfg.PreferDST),
		interpreter.WithLogger(loggerpkg.Named(appLogger, "interpreter"), cfg.Verbose),
	)

	if opts.Serve {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		src, out, err := newTransport(cfg, os.Stdin, os.Stdout)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		sender := bot.NewRateLimitedSender(out, cfg.RepliesPerSecond, cfg.ReplyBurst)
		d := bot.NewDispatcher(interp, sender,
			bot.WithWorkers(cfg.Workers),
			bot.WithLogger(loggerpkg.Named(appLogger, "bot"), cfg.Verbose),
		)
		if err := d.Run(ctx, src); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runREPL(interp, replOptions{
		Prompt:      cfg.Prompt,
		ReplyMarker: cfg.ReplyMarker,
		QuitWords:   cfg.QuitWords,
	}, os.Stdin, os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newTransport picks the Telegram Bot API when a token file is configured and
// JSON lines on in/out otherwise.
func newTransport(cfg configpkg.Config, in io.Reader, out io.Writer) (bot.Source, bot.Sender, error) {
	if cfg.TelegramTokenFile == "" {
		return bot.NewLineSource(in), bot.NewLineSender(out), nil
	}
	token, err := bot.ReadToken(cfg.TelegramTokenFile)
	if err != nil {
		return nil, nil, err
	}
	client := bot.NewTelegramClient(token,
		bot.WithAPIURL(cfg.TelegramAPI),
		bot.WithPollTimeout(time.Duration(cfg.PollTimeoutSeconds)*time.Second),
	)
	return client, client, nil
}
