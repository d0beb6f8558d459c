// Package lexical provides the text primitives that entity resolution and
// query analysis are built on: name normalization, tokenization, character
// sequence similarity, initialism detection, and TF-IDF vectorization.
package lexical

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	tokenRe      = regexp.MustCompile(`[a-z0-9']+`)
)

// NormalizeName lowercases a name and collapses whitespace so equal names
// map to the same key.
func NormalizeName(name string) string {
	normalized := whitespaceRe.ReplaceAllString(strings.ToLower(name), " ")
	return strings.TrimSpace(normalized)
}

// Tokenize lowercases text and returns its alphanumeric tokens. Apostrophes
// survive inside a token but are trimmed from its edges.
func Tokenize(text string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.Trim(tok, "'")
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Initials returns the first letter of each whitespace-separated word of the
// normalized name. "International Business Machines" becomes "ibm".
func Initials(name string) string {
	var b strings.Builder
	for _, field := range strings.Fields(NormalizeName(name)) {
		runes := []rune(field)
		if len(runes) > 0 {
			b.WriteRune(runes[0])
		}
	}
	return b.String()
}

// IsInitialism reports whether one name is the initialism of the other, in
// either direction. The candidate initialism side must be a single word and
// the expanded side must have at least two words. Periods in the short form
// are ignored, so "I.B.M." still matches "International Business Machines".
func IsInitialism(a, b string) bool {
	return isInitialismOf(a, b) || isInitialismOf(b, a)
}

func isInitialismOf(short, long string) bool {
	compact := strings.ReplaceAll(NormalizeName(short), ".", "")
	compact = strings.ReplaceAll(compact, " ", "")
	if compact == "" {
		return false
	}

	words := strings.Fields(NormalizeName(long))
	if len(words) < 2 {
		return false
	}
	return compact == Initials(long)
}

// stopWords holds common function words excluded from keyword extraction.
// Words of three letters or fewer are filtered by length before this set is
// consulted, so only longer function words are listed.
var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "these": {}, "those": {}, "there": {}, "their": {},
	"them": {}, "then": {}, "than": {}, "they": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "with": {}, "would": {}, "could": {},
	"should": {}, "have": {}, "been": {}, "being": {}, "will": {}, "were": {},
	"your": {}, "yours": {}, "from": {}, "into": {}, "onto": {}, "over": {},
	"under": {}, "about": {}, "after": {}, "before": {}, "between": {},
	"because": {}, "both": {}, "each": {}, "other": {}, "some": {}, "such": {},
	"only": {}, "very": {}, "just": {}, "also": {}, "more": {}, "most": {},
	"much": {}, "many": {}, "does": {}, "doing": {}, "done": {}, "here": {},
}

// IsStopWord reports whether the lowercase token is a common function word.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
