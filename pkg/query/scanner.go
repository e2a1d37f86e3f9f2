package query

import "unicode"

// scanner gives the parser indexed access to the input runes.
// Every helper returns a position and never consumes on failure.
type scanner struct {
	src []rune
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (s *scanner) at(i int) rune {
	if i < 0 || i >= len(s.src) {
		return 0
	}
	return s.src[i]
}

// boundary reports whether a word boundary lies between i-1 and i.
func (s *scanner) boundary(i int) bool {
	before := i > 0 && i <= len(s.src) && isWord(s.src[i-1])
	after := i >= 0 && i < len(s.src) && isWord(s.src[i])
	return before != after
}

// digits returns the end of the ASCII digit run starting at i.
func (s *scanner) digits(i int) int {
	for i < len(s.src) && isDigit(s.src[i]) {
		i++
	}
	return i
}

// spaces returns the end of the whitespace run starting at i.
func (s *scanner) spaces(i int) int {
	for i < len(s.src) && unicode.IsSpace(s.src[i]) {
		i++
	}
	return i
}

func (s *scanner) hasPrefix(i int, lit string) bool {
	for _, r := range lit {
		if s.at(i) != r {
			return false
		}
		i++
	}
	return true
}

// clockStarts tokenizes the input into digit runs and returns the start of
// each run that begins on a word boundary, in order of appearance.
func (s *scanner) clockStarts() []int {
	var starts []int
	for i := 0; i < len(s.src); {
		if !isDigit(s.src[i]) {
			i++
			continue
		}
		if s.boundary(i) {
			starts = append(starts, i)
		}
		i = s.digits(i)
	}
	return starts
}
