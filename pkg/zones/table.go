// Package zones holds the table of recognised time zone tokens and resolves
// tokens to concrete locations.
package zones

//go:generate go run ./build -out zones_gen.go

import (
	"sort"
	"strings"
	"sync"
)

// Informal US abbreviations accepted alongside the IANA names.
const (
	EDT = "edt"
	EST = "est"
	PDT = "pdt"
	PST = "pst"
)

var usStyle = map[string]bool{
	EDT: true,
	EST: true,
	PDT: true,
	PST: true,
}

// IsUSStyle reports whether token is one of the informal US abbreviations.
func IsUSStyle(token string) bool {
	return usStyle[token]
}

// Table is an immutable set of lowercase time zone tokens.
type Table struct {
	canonical map[string]string // token -> IANA name
	names     map[string]bool   // IANA names as spelled in the database
	root      *trieNode
}

type trieNode struct {
	children map[rune]*trieNode
	terminal bool
}

// NewTable builds a table from IANA names (any case) plus the US abbreviations.
func NewTable(names ...string) *Table {
	t := &Table{
		canonical: make(map[string]string, len(names)+len(usStyle)),
		names:     make(map[string]bool, len(names)),
		root:      &trieNode{},
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		t.names[name] = true
		t.add(strings.ToLower(name), name)
	}
	for token := range usStyle {
		t.add(token, "")
	}
	return t
}

func (t *Table) add(token, name string) {
	if _, ok := t.canonical[token]; !ok || name != "" {
		t.canonical[token] = name
	}
	node := t.root
	for _, r := range token {
		next := node.children[r]
		if next == nil {
			if node.children == nil {
				node.children = make(map[rune]*trieNode)
			}
			next = &trieNode{}
			node.children[r] = next
		}
		node = next
	}
	node.terminal = true
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the process-wide table built from the bundled IANA names.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable(ianaNames...)
	})
	return defaultTable
}

// Contains reports whether token is a recognised lowercase token.
func (t *Table) Contains(token string) bool {
	_, ok := t.canonical[token]
	return ok
}

// IsCanonical reports whether name is spelled exactly as an IANA identifier.
func (t *Table) IsCanonical(name string) bool {
	return t.names[name]
}

// Len returns the number of tokens.
func (t *Table) Len() int {
	return len(t.canonical)
}

// Tokens returns all tokens in sorted order.
func (t *Table) Tokens() []string {
	out := make([]string, 0, len(t.canonical))
	for token := range t.canonical {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// Prefixes returns the lengths, in runes, of every token that is a prefix of
// s. Longer tokens come first so callers can apply longest-token-wins.
func (t *Table) Prefixes(s []rune) []int {
	var lengths []int
	node := t.root
	for i, r := range s {
		node = node.children[r]
		if node == nil {
			break
		}
		if node.terminal {
			lengths = append(lengths, i+1)
		}
	}
	for i, j := 0, len(lengths)-1; i < j; i, j = i+1, j-1 {
		lengths[i], lengths[j] = lengths[j], lengths[i]
	}
	return lengths
}
