package interpreter

import (
	"github.com/minhyannv/timebot-go/pkg/query"
	"github.com/minhyannv/timebot-go/pkg/zones"
)

// Default zones standing in for the two audiences.
const (
	DefaultEuropean = "cet"
	DefaultAmerican = zones.EST
)

// Path records which rule filled in a ResolvedQuery.
type Path int

const (
	// PathLoneSource: a single token with no separator is the source.
	PathLoneSource Path = iota
	// PathDefaultSource: a separator marked the token as the destination.
	PathDefaultSource
	// PathExplicit: both tokens were given.
	PathExplicit
)

func (p Path) String() string {
	switch p {
	case PathLoneSource:
		return "lone-source"
	case PathDefaultSource:
		return "default-source"
	case PathExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// ResolvedQuery carries both zone tokens.
type ResolvedQuery struct {
	Source      string
	Destination string
	Path        Path
}

// counterpart picks the zone of the other audience.
func counterpart(token string) string {
	if zones.IsUSStyle(token) {
		return DefaultEuropean
	}
	return DefaultAmerican
}

// Disambiguate fills in a missing source or destination token.
func Disambiguate(q query.ParsedQuery) ResolvedQuery {
	switch {
	case !q.HasSource() && !q.HasSeparator():
		return ResolvedQuery{
			Source:      q.Destination,
			Destination: counterpart(q.Destination),
			Path:        PathLoneSource,
		}
	case !q.HasSource():
		return ResolvedQuery{
			Source:      counterpart(q.Destination),
			Destination: q.Destination,
			Path:        PathDefaultSource,
		}
	default:
		return ResolvedQuery{
			Source:      q.Source,
			Destination: q.Destination,
			Path:        PathExplicit,
		}
	}
}
