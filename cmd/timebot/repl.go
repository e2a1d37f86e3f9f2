package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// queryInterpreter is the part of the interpreter the REPL needs.
type queryInterpreter interface {
	Interpret(text string, now time.Time) (string, bool)
}

// replOptions configures REPL behavior.
type replOptions struct {
	Prompt      string
	ReplyMarker string
	QuitWords   []string
	Now         func() time.Time
}

func (o replOptions) isQuit(input string) bool {
	input = strings.ToLower(input)
	for _, word := range o.QuitWords {
		if input == word {
			return true
		}
	}
	return false
}

// runREPL answers one query per line until a quit word or end of input.
func runREPL(interp queryInterpreter, opts replOptions, in io.Reader, out io.Writer) error {
	if interp == nil {
		return fmt.Errorf("interpreter is required")
	}
	if in == nil {
		return fmt.Errorf("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	scanner := bufio.NewScanner(in)
	printWelcome(out, opts.QuitWords)

	for {
		_, _ = fmt.Fprint(out, opts.Prompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if opts.isQuit(input) {
			_, _ = fmt.Fprintln(out, "Bye!")
			break
		}

		if reply, ok := interp.Interpret(input, opts.Now()); ok {
			_, _ = fmt.Fprintf(out, "%s%s\n", opts.ReplyMarker, reply)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func printWelcome(out io.Writer, quitWords []string) {
	_, _ = fmt.Fprintln(out, "=== timebot - Interactive Mode ===")
	_, _ = fmt.Fprintln(out, `Type a time and zones, e.g. "3pm est to cet" or "14:30 in pst".`)
	if len(quitWords) > 0 {
		_, _ = fmt.Fprintf(out, "Type %s to exit.\n", strings.Join(quitWords, ", "))
	}
	_, _ = fmt.Fprintln(out)
}
