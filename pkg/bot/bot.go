// Package bot connects the interpreter to a chat transport: it filters out
// commands, interprets every other message and sends replies back to the
// chat they came from.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	loggerpkg "github.com/minhyannv/timebot-go/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Update is one inbound chat message.
type Update struct {
	ChatID int64
	Text   string
	// IsCommand is set by transports that mark commands out of band.
	IsCommand bool
}

// Reply is one outbound chat message.
type Reply struct {
	ChatID int64
	Text   string
}

// Interpreter answers a message or declines to.
type Interpreter interface {
	Interpret(text string, now time.Time) (string, bool)
}

// Source yields updates until it returns io.EOF.
type Source interface {
	Next(ctx context.Context) (Update, error)
}

// Sender delivers replies.
type Sender interface {
	Send(ctx context.Context, r Reply) error
}

// IsCommand reports whether u is a bot command such as "/start".
func IsCommand(u Update) bool {
	return u.IsCommand || strings.HasPrefix(strings.TrimSpace(u.Text), "/")
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger injects a logger.
func WithLogger(l loggerpkg.Logger, verbose bool) Option {
	return func(d *Dispatcher) {
		d.logger = l
		d.verbose = verbose
	}
}

// WithWorkers bounds how many updates are handled at once.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// Dispatcher routes updates through the interpreter.
type Dispatcher struct {
	interp  Interpreter
	sender  Sender
	workers int
	now     func() time.Time

	logger  loggerpkg.Logger
	verbose bool
}

// NewDispatcher builds a dispatcher.
func NewDispatcher(interp Interpreter, sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		interp:  interp,
		sender:  sender,
		workers: 1,
		now:     time.Now,
		logger:  loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Handle processes a single update. It reports whether a reply was sent.
func (d *Dispatcher) Handle(ctx context.Context, u Update) (bool, error) {
	if IsCommand(u) {
		loggerpkg.Debug(d.verbose, d.logger, "command ignored", map[string]any{"chat_id": u.ChatID})
		return false, nil
	}
	text, ok := d.interp.Interpret(u.Text, d.now())
	if !ok {
		return false, nil
	}
	if err := d.sender.Send(ctx, Reply{ChatID: u.ChatID, Text: text}); err != nil {
		return false, fmt.Errorf("send reply to chat %d: %w", u.ChatID, err)
	}
	loggerpkg.Info(d.logger, "reply sent", map[string]any{"chat_id": u.ChatID})
	return true, nil
}

// Run reads src until io.EOF or ctx is done, then waits for in-flight
// updates. Failures of individual updates are logged and do not stop the
// loop; malformed updates are skipped.
func (d *Dispatcher) Run(ctx context.Context, src Source) error {
	if d.interp == nil || d.sender == nil {
		return errors.New("dispatcher needs an interpreter and a sender")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	var readErr error
	for {
		u, err := src.Next(gctx)
		if errors.Is(err, io.EOF) || (err != nil && ctx.Err() != nil) {
			break
		}
		var malformed *MalformedUpdateError
		if errors.As(err, &malformed) {
			loggerpkg.Warn(d.logger, "update skipped", map[string]any{"error": err.Error()})
			continue
		}
		if err != nil {
			readErr = fmt.Errorf("read update: %w", err)
			break
		}

		g.Go(func() error {
			if _, err := d.Handle(gctx, u); err != nil {
				loggerpkg.Error(d.logger, "update failed", map[string]any{
					"chat_id": u.ChatID,
					"error":   err.Error(),
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return readErr
}
