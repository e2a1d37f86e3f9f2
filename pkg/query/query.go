// Package query recognises a clock time followed by one or two time zone
// tokens inside free text.
//
// The grammar, applied from the first digit run that satisfies it:
//
//	query     = hour [ ":" minute ] ws* [ meridiem ] ws* [ source ] ws+ [ separator ws+ ] dest
//	hour      = digit [ digit ]
//	minute    = digit [ digit ]
//	meridiem  = "am" | "pm"
//	separator = "in" | "to"
//	source    = zone token followed by whitespace
//	dest      = zone token ending on a word boundary
//
// Text before the hour and after the destination is ignored. When several
// zone tokens start at the same position the longest one is taken.
package query

import "strconv"

// Meridiem is the optional am/pm marker.
type Meridiem string

const (
	NoMeridiem Meridiem = ""
	AM         Meridiem = "am"
	PM         Meridiem = "pm"
)

// Separator words that mark the following token as the destination.
const (
	SeparatorIn = "in"
	SeparatorTo = "to"
)

// ParsedQuery is the matcher output. Hour is not yet adjusted for Meridiem.
type ParsedQuery struct {
	Hour        int
	Minute      int
	Meridiem    Meridiem
	Source      string
	Separator   string
	Destination string
}

// HasSource reports whether a source token was given.
func (q ParsedQuery) HasSource() bool { return q.Source != "" }

// HasSeparator reports whether "in" or "to" preceded the destination.
func (q ParsedQuery) HasSeparator() bool { return q.Separator != "" }

// Lookup finds zone tokens at the start of a rune slice.
type Lookup interface {
	// Prefixes returns the rune lengths of matching tokens, longest first.
	Prefixes(s []rune) []int
}

// Matcher applies the grammar using a token lookup. It holds no mutable state.
type Matcher struct {
	tokens Lookup
}

// NewMatcher returns a matcher backed by tokens.
func NewMatcher(tokens Lookup) *Matcher {
	return &Matcher{tokens: tokens}
}

// Match parses lowercase text. The second result is false when nothing in
// text satisfies the grammar.
func (m *Matcher) Match(text string) (ParsedQuery, bool) {
	s := &scanner{src: []rune(text)}
	for _, start := range s.clockStarts() {
		if q, ok := m.clock(s, start); ok {
			return q, true
		}
	}
	return ParsedQuery{}, false
}

func (m *Matcher) clock(s *scanner, i int) (ParsedQuery, bool) {
	var q ParsedQuery
	end := s.digits(i)
	if end-i > 2 {
		return q, false
	}
	q.Hour, _ = strconv.Atoi(string(s.src[i:end]))
	i = end

	if s.at(i) == ':' {
		minEnd := s.digits(i + 1)
		if n := minEnd - (i + 1); n >= 1 && n <= 2 {
			q.Minute, _ = strconv.Atoi(string(s.src[i+1 : minEnd]))
			i = minEnd
		}
	}

	if j := s.spaces(i); s.hasPrefix(j, string(AM)) || s.hasPrefix(j, string(PM)) {
		withMeridiem := q
		withMeridiem.Meridiem = Meridiem(string(s.src[j : j+2]))
		if r, ok := m.zones(s, j+2, withMeridiem); ok {
			return r, true
		}
	}
	return m.zones(s, i, q)
}

func (m *Matcher) zones(s *scanner, i int, q ParsedQuery) (ParsedQuery, bool) {
	j := s.spaces(i)
	for _, n := range m.tokens.Prefixes(s.src[j:]) {
		end := j + n
		if k := s.spaces(end); k > end {
			withSource := q
			withSource.Source = string(s.src[j:end])
			if r, ok := m.destination(s, k, withSource); ok {
				return r, true
			}
		}
	}
	if j == i {
		return q, false
	}
	return m.destination(s, j, q)
}

func (m *Matcher) destination(s *scanner, i int, q ParsedQuery) (ParsedQuery, bool) {
	for _, sep := range []string{SeparatorIn, SeparatorTo} {
		if !s.hasPrefix(i, sep) {
			continue
		}
		end := i + len(sep)
		if k := s.spaces(end); k > end {
			withSep := q
			withSep.Separator = sep
			if r, ok := m.token(s, k, withSep); ok {
				return r, true
			}
		}
	}
	return m.token(s, i, q)
}

func (m *Matcher) token(s *scanner, i int, q ParsedQuery) (ParsedQuery, bool) {
	for _, n := range m.tokens.Prefixes(s.src[i:]) {
		if s.boundary(i + n) {
			q.Destination = string(s.src[i : i+n])
			return q, true
		}
	}
	return q, false
}
