package zones

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// Zones that several tokens collapse onto. These keep their DST rules.
const (
	USEastern  = "US/Eastern"
	USPacific  = "US/Pacific"
	CentralEur = "CET"
)

// UnknownTimezoneError is returned when a token has no exact IANA identifier.
type UnknownTimezoneError struct {
	Token     string
	Canonical string
}

func (e *UnknownTimezoneError) Error() string {
	return fmt.Sprintf("unknown time zone %q", e.Canonical)
}

// CanonicalName maps a token to the identifier it is looked up under.
//
// Tokens other than the special cases are upper-cased, so multi-segment names
// such as "america/new_york" become "AMERICA/NEW_YORK" and do not resolve.
func CanonicalName(token string) string {
	switch token {
	case EDT, EST:
		return USEastern
	case "cest":
		return CentralEur
	case PDT, PST:
		return USPacific
	default:
		return strings.ToUpper(token)
	}
}

// Resolver turns tokens into locations. It is safe for concurrent use.
type Resolver struct {
	table *Table
	load  func(name string) (*time.Location, error)
}

// NewResolver creates a resolver that validates names against table.
func NewResolver(table *Table) *Resolver {
	if table == nil {
		table = Default()
	}
	return &Resolver{
		table: table,
		load:  time.LoadLocation,
	}
}

// Resolve returns the location for token.
func (r *Resolver) Resolve(token string) (*time.Location, error) {
	name := CanonicalName(token)
	switch name {
	case USEastern, USPacific, CentralEur:
	default:
		if !r.table.IsCanonical(name) {
			return nil, &UnknownTimezoneError{Token: token, Canonical: name}
		}
	}

	loc, err := r.load(name)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", name, err)
	}
	return loc, nil
}
