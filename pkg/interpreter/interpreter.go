// Package interpreter turns a chat message such as "3pm est to cet" into a
// converted time reply.
package interpreter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	loggerpkg "github.com/minhyannv/timebot-go/pkg/logger"
	"github.com/minhyannv/timebot-go/pkg/query"
	"github.com/minhyannv/timebot-go/pkg/zones"
)

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger injects a logger; debug output is written only when verbose.
func WithLogger(l loggerpkg.Logger, verbose bool) Option {
	return func(in *Interpreter) {
		in.logger = l
		in.verbose = verbose
	}
}

// WithPreferDST controls how wall times repeated by a DST transition are
// read. It is on by default for compatibility with existing replies.
func WithPreferDST(prefer bool) Option {
	return func(in *Interpreter) {
		in.preferDST = prefer
	}
}

// Interpreter is immutable after New and safe for concurrent use.
type Interpreter struct {
	matcher   *query.Matcher
	resolver  *zones.Resolver
	preferDST bool

	logger  loggerpkg.Logger
	verbose bool
}

// New builds an interpreter over table. A nil table means zones.Default().
func New(table *zones.Table, opts ...Option) *Interpreter {
	if table == nil {
		table = zones.Default()
	}
	in := &Interpreter{
		matcher:   query.NewMatcher(table),
		resolver:  zones.NewResolver(table),
		preferDST: true,
		logger:    loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(in)
		}
	}
	return in
}

// Result holds every stage of a successful evaluation.
type Result struct {
	Parsed     query.ParsedQuery
	Resolved   ResolvedQuery
	Source     time.Time
	Conversion ConversionResult
	Reply      string
}

// Evaluate runs the full pipeline. It returns ErrNoMatch when text holds no
// query, *zones.UnknownTimezoneError, *CalendarError or *ConversionError otherwise.
func (in *Interpreter) Evaluate(text string, now time.Time) (Result, error) {
	var res Result
	parsed, ok := in.matcher.Match(strings.ToLower(text))
	if !ok {
		return res, ErrNoMatch
	}
	res.Parsed = parsed
	res.Resolved = Disambiguate(parsed)
	loggerpkg.Debug(in.verbose, in.logger, "query parsed", map[string]any{
		"hour":        parsed.Hour,
		"minute":      parsed.Minute,
		"meridiem":    parsed.Meridiem,
		"source":      res.Resolved.Source,
		"destination": res.Resolved.Destination,
		"path":        res.Resolved.Path.String(),
	})

	srcLoc, err := in.resolve(res.Resolved.Source)
	if err != nil {
		return res, err
	}
	hour := NormalizeHour(parsed.Hour, parsed.Meridiem)
	res.Source, err = Localize(now, hour, parsed.Minute, srcLoc, in.preferDST)
	if err != nil {
		return res, err
	}
	// The destination is looked up only once the source time is valid.
	dstLoc, err := in.resolve(res.Resolved.Destination)
	if err != nil {
		return res, err
	}

	converted := res.Source.In(dstLoc)
	res.Conversion = ConversionResult{Time: converted, Rendered: Render(converted)}
	res.Reply = FormatReply(res.Conversion, res.Resolved.Destination)
	return res, nil
}

func (in *Interpreter) resolve(token string) (*time.Location, error) {
	loc, err := in.resolver.Resolve(token)
	if err == nil {
		return loc, nil
	}
	var unknown *zones.UnknownTimezoneError
	if errors.As(err, &unknown) {
		return nil, err
	}
	return nil, &ConversionError{Zone: zones.CanonicalName(token), Err: err}
}

// Interpret returns the reply for text, or false when there is nothing to
// answer. Failures become an apology reply and never escape.
func (in *Interpreter) Interpret(text string, now time.Time) (reply string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			loggerpkg.Error(in.logger, "interpret panic", map[string]any{"panic": fmt.Sprint(r)})
			reply, ok = Apology(fmt.Errorf("internal error: %v", r)), true
		}
	}()

	res, err := in.Evaluate(text, now)
	switch {
	case err == nil:
		return res.Reply, true
	case errors.Is(err, ErrNoMatch):
		return "", false
	default:
		loggerpkg.Debug(in.verbose, in.logger, "query failed", map[string]any{"error": err.Error()})
		return Apology(err), true
	}
}
