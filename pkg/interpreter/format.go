package interpreter

import (
	"fmt"
	"time"

	"github.com/minhyannv/timebot-go/pkg/zones"
)

// Reply markers for the two audiences.
const (
	AmericanMarker = "😜🇺🇸🇺🇸"
	EuropeanMarker = "🇪🇺👌"
)

// ConversionResult is the converted time and its "HH:MM ZONE" rendering.
type ConversionResult struct {
	Time     time.Time
	Rendered string
}

// Render formats t as 24-hour "HH:MM" plus the zone abbreviation in effect.
func Render(t time.Time) string {
	return t.Format("15:04 MST")
}

// FormatReply wraps a conversion with the marker of the destination's audience.
func FormatReply(res ConversionResult, destination string) string {
	marker := EuropeanMarker
	if zones.IsUSStyle(destination) {
		marker = AmericanMarker
	}
	return fmt.Sprintf("That's %s %s", res.Rendered, marker)
}

// Apology is the only place an error is turned into user-visible text.
func Apology(err error) string {
	return fmt.Sprintf("Whatevs 😎 (%v)", err)
}
