// Package fuzzy ranks candidate strings against a typed query. It backs
// autocomplete suggestions and the app launcher.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match is a candidate that matched a query.
type Match struct {
	Text  string
	Index int // position in the original candidate list
	// Distance is lower for closer matches. Prefix matches score -1.
	Distance int
}

// Rank returns the candidates matching query, best first. An empty query
// returns every candidate in original order. limit <= 0 means no limit.
func Rank(query string, candidates []string, limit int) []Match {
	trimmed := strings.TrimSpace(query)
	var out []Match
	if trimmed == "" {
		out = make([]Match, len(candidates))
		for i, c := range candidates {
			out[i] = Match{Text: c, Index: i}
		}
		return truncate(out, limit)
	}

	ranks := fuzzy.RankFindNormalizedFold(trimmed, candidates)
	out = make([]Match, 0, len(ranks))
	lower := strings.ToLower(trimmed)
	for _, r := range ranks {
		d := r.Distance
		if strings.HasPrefix(strings.ToLower(r.Target), lower) {
			d = -1
		}
		out = append(out, Match{Text: r.Target, Index: r.OriginalIndex, Distance: d})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Index < out[j].Index
	})
	return truncate(out, limit)
}

// Texts returns just the matched strings.
func Texts(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Text
	}
	return out
}

func truncate(m []Match, limit int) []Match {
	if limit > 0 && len(m) > limit {
		return m[:limit]
	}
	return m
}
