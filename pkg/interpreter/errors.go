package interpreter

import (
	"errors"
	"fmt"
)

// ErrNoMatch means the text holds no time query. It is never shown to users.
var ErrNoMatch = errors.New("no time query found")

// CalendarError reports an hour or minute outside the clock range.
type CalendarError struct {
	Hour   int
	Minute int
}

func (e *CalendarError) Error() string {
	if e.Hour < 0 || e.Hour > 23 {
		return fmt.Sprintf("hour must be in 0..23, got %d", e.Hour)
	}
	return fmt.Sprintf("minute must be in 0..59, got %d", e.Minute)
}

// ConversionError wraps failures of the underlying zone and date arithmetic.
type ConversionError struct {
	Zone string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert via %s: %v", e.Zone, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
