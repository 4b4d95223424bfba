// Package disambiguate narrows a set of backing resource names (for example
// VPN profile files) down to the one an utterance refers to.
package disambiguate

import (
	"strings"
	"unicode"

	"github.com/aretw0/hearth/pkg/domain"
)

// Narrow filters candidates using the tokens in order.
//
// Each token extends an accumulated phrase. The original candidates are
// filtered by whether their normalized name contains that phrase, and the
// filtered set replaces the working set only when it is non-empty and strictly
// smaller. A token that normalizes to nothing is ignored, and one that does
// not narrow further is skipped, so the result never grows and is never empty
// unless candidates was.
func Narrow(candidates []string, tokens []domain.Token) []string {
	if len(candidates) <= 1 {
		return candidates
	}

	normalized := make([]string, len(candidates))
	for i, c := range candidates {
		normalized[i] = Normalize(c)
	}

	current := candidates
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		word := Normalize(tok.Value)
		if word == "" {
			continue
		}
		words = append(words, word)
		phrase := strings.Join(words, " ")

		var filtered []string
		for i, n := range normalized {
			if strings.Contains(n, phrase) {
				filtered = append(filtered, candidates[i])
			}
		}
		if len(filtered) > 0 && len(filtered) < len(current) {
			current = filtered
		}
	}
	return current
}

// Pick narrows candidates and requires exactly one survivor.
// It returns ErrLookup for an empty candidate list and an
// AmbiguousResourceError when several remain.
func Pick(candidates []string, tokens []domain.Token) (string, error) {
	remaining := Narrow(candidates, tokens)
	switch len(remaining) {
	case 0:
		return "", domain.ErrLookup
	case 1:
		return remaining[0], nil
	default:
		return "", &domain.AmbiguousResourceError{Candidates: append([]string(nil), remaining...)}
	}
}

// Normalize lower-cases s, turns punctuation and underscores into spaces and
// collapses runs of whitespace.
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return unicode.ToLower(r)
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}
