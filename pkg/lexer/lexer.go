// Package lexer turns raw utterance text into typed tokens.
//
// Country names come from a gazetteer and may span several words
// ("united kingdom"); numbers become NUMBER tokens; every other word is
// FREE_TEXT. Token values keep the user's casing.
package lexer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/hearth/pkg/domain"
)

// DefaultCountries is the built-in gazetteer.
var DefaultCountries = []string{
	"Argentina", "Australia", "Austria", "Belgium", "Brazil", "Canada", "Chile",
	"Czech Republic", "Denmark", "Finland", "France", "Germany", "Greece",
	"Hong Kong", "Iceland", "India", "Ireland", "Israel", "Italy", "Japan",
	"Luxembourg", "Mexico", "Netherlands", "New Zealand", "Norway", "Poland",
	"Portugal", "Romania", "Singapore", "South Africa", "South Korea", "Spain",
	"Sweden", "Switzerland", "Turkey", "United Kingdom", "United States",
}

// Lexer tokenizes utterances. It is immutable after New and safe for
// concurrent use.
type Lexer struct {
	countries map[string]struct{}
	maxWords  int
}

// New creates a lexer recognizing the given country names (case-insensitive).
func New(countries []string) *Lexer {
	l := &Lexer{countries: make(map[string]struct{}, len(countries)), maxWords: 1}
	for _, c := range countries {
		words := strings.Fields(strings.ToLower(c))
		if len(words) == 0 {
			continue
		}
		l.countries[strings.Join(words, " ")] = struct{}{}
		if len(words) > l.maxWords {
			l.maxWords = len(words)
		}
	}
	return l
}

// Default creates a lexer over DefaultCountries.
func Default() *Lexer {
	return New(DefaultCountries)
}

// Tokenize sanitizes input and splits it into positioned tokens.
func (l *Lexer) Tokenize(input string) ([]domain.Token, error) {
	clean, err := SanitizeInput(input)
	if err != nil {
		return nil, err
	}

	var words []string
	for _, w := range strings.Fields(clean) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return unicode.IsPunct(r) && r != '_'
		})
		if w != "" {
			words = append(words, w)
		}
	}

	tokens := make([]domain.Token, 0, len(words))
	for i := 0; i < len(words); {
		if n := l.country(words[i:]); n > 0 {
			tokens = append(tokens, domain.Token{
				Type:     domain.TokenCountry,
				Value:    strings.Join(words[i:i+n], " "),
				Position: len(tokens),
			})
			i += n
			continue
		}

		typ := domain.TokenFreeText
		if _, err := strconv.ParseFloat(words[i], 64); err == nil {
			typ = domain.TokenNumber
		}
		tokens = append(tokens, domain.Token{Type: typ, Value: words[i], Position: len(tokens)})
		i++
	}
	return tokens, nil
}

// country returns how many leading words form a known country, longest first.
func (l *Lexer) country(words []string) int {
	for n := min(l.maxWords, len(words)); n > 0; n-- {
		phrase := strings.ToLower(strings.Join(words[:n], " "))
		if _, ok := l.countries[phrase]; ok {
			return n
		}
	}
	return 0
}
