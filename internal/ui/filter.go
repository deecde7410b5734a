package ui

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"molecule-browser/internal/catalog"
)

// FilterConfig tunes how the filter editor narrows long option lists.
type FilterConfig struct {
	MinCoverage float64 // share of the query a fuzzy match must cover
	MaxSpread   int     // max distance between first and last matched rune
	MaxResults  int
}

// narrowOptions returns the options matching q. Options starting with q come
// first, then other substring hits, both in display order. Fuzzy matching,
// best score first, is only tried when nothing contains q.
func narrowOptions(q string, options []string, cfg FilterConfig) []string {
	q = catalog.Normalize(q)
	if q == "" {
		return options
	}
	var prefix, inner []string
	for _, o := range options {
		n := catalog.Normalize(o)
		switch {
		case strings.HasPrefix(n, q):
			prefix = append(prefix, o)
		case strings.Contains(n, q):
			inner = append(inner, o)
		}
	}
	if hits := append(prefix, inner...); len(hits) > 0 {
		return capResults(hits, cfg.MaxResults)
	}
	return fuzzyOptions(q, options, cfg)
}

func fuzzyOptions(q string, options []string, cfg FilterConfig) []string {
	lowered := make([]string, len(options))
	for i, o := range options {
		lowered[i] = catalog.Normalize(o)
	}
	matches := fuzzy.Find(q, lowered)

	var strict, loose []string
	for _, mt := range matches {
		o := options[mt.Index]
		loose = append(loose, o)
		if coverage(q, mt) >= cfg.MinCoverage && spread(mt) <= cfg.MaxSpread {
			strict = append(strict, o)
		}
	}
	if len(strict) > 0 {
		return capResults(strict, cfg.MaxResults)
	}
	return capResults(loose, cfg.MaxResults)
}

func capResults(s []string, n int) []string {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

func coverage(q string, mt fuzzy.Match) float64 {
	if q == "" {
		return 1
	}
	return float64(len(mt.MatchedIndexes)) / float64(len([]rune(q)))
}

func spread(mt fuzzy.Match) int {
	if len(mt.MatchedIndexes) == 0 {
		return 0
	}
	return mt.MatchedIndexes[len(mt.MatchedIndexes)-1] - mt.MatchedIndexes[0]
}
