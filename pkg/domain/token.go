package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenType is the closed set of token kinds produced by a tokenizer.
type TokenType string

const (
	TokenCountry  TokenType = "COUNTRY"
	TokenFreeText TokenType = "FREE_TEXT"
	TokenNumber   TokenType = "NUMBER"
)

// AllTokenTypes returns every valid token type.
func AllTokenTypes() []TokenType {
	return []TokenType{TokenCountry, TokenFreeText, TokenNumber}
}

// IsValid reports whether t is a known token type.
func (t TokenType) IsValid() bool {
	for _, valid := range AllTokenTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// ParseTokenType converts a descriptor string (case-insensitive) into a TokenType.
func ParseTokenType(s string) (TokenType, error) {
	t := TokenType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown token type %q", s)
	}
	return t, nil
}

// Token is a typed unit of an utterance. Position is its index in the utterance
// and is preserved end-to-end.
type Token struct {
	Type     TokenType `json:"type" yaml:"type"`
	Value    string    `json:"value" yaml:"value"`
	Position int       `json:"position" yaml:"position"`
}

// Text returns the normalized (trimmed, lower-cased) text used for keyword comparison.
func (t Token) Text() string {
	return strings.ToLower(strings.TrimSpace(t.Value))
}

// Any returns the value in its wire representation: NUMBER tokens become
// float64 when parseable, everything else stays a string.
func (t Token) Any() any {
	if t.Type == TokenNumber {
		if f, err := strconv.ParseFloat(t.Value, 64); err == nil {
			return f
		}
	}
	return t.Value
}

// After returns the tokens positioned strictly after position, in order.
func After(tokens []Token, position int) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Position > position {
			out = append(out, tok)
		}
	}
	return out
}

// Texts returns the normalized text of each token.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text()
	}
	return out
}

// Append concatenates a follow-up utterance onto an earlier one, shifting the
// follow-up positions so that ordering stays positional across both.
func Append(first, followUp []Token) []Token {
	offset := 0
	for _, tok := range first {
		if tok.Position >= offset {
			offset = tok.Position + 1
		}
	}
	out := make([]Token, 0, len(first)+len(followUp))
	out = append(out, first...)
	for _, tok := range followUp {
		tok.Position += offset
		out = append(out, tok)
	}
	return out
}
