// Package tokenizer turns free-form ingredient and pantry item names into
// a normalized, ordered sequence of tokens. It is pure and deterministic:
// the same input always yields the same output, with no I/O.
package tokenizer

import (
	"strings"
)

// MaxTokens caps the number of tokens a single name contributes.
const MaxTokens = 10

// MinTokenLength is the shortest token length that survives filtering.
const MinTokenLength = 3

// stopwords is part of the external contract: changing it changes matching
// behavior across the inventory matcher, category inferer, and receipt
// normalizer. Additions are safe; removals can silently widen matches.
var stopwords = map[string]struct{}{
	// freshness / quality descriptors
	"fresh": {}, "organic": {}, "natural": {}, "premium": {}, "quality": {},
	"select": {}, "choice": {}, "grade": {}, "aa": {}, "extra": {},
	// size descriptors
	"large": {}, "small": {}, "medium": {}, "jumbo": {}, "mini": {},
	"giant": {}, "big": {}, "family": {}, "single": {},
	// package descriptors
	"pack": {}, "pkg": {}, "package": {}, "box": {}, "bag": {}, "case": {},
	"bundle": {}, "bunch": {}, "carton": {}, "container": {}, "jar": {},
	"can": {}, "bottle": {},
	// unit abbreviations
	"oz": {}, "lb": {}, "lbs": {}, "ct": {}, "gal": {}, "qt": {}, "pt": {},
	"fl": {}, "kg": {}, "g": {}, "ml": {}, "l": {}, "dz": {}, "pk": {},
	"ea": {},
	// common filler
	"the": {}, "and": {}, "for": {}, "with": {}, "a": {}, "an": {}, "of": {},
	"in": {}, "to": {}, "or": {}, "no": {}, "new": {},
}

// IsStopword reports whether a single lowercase token is in the stopword
// set. Exported so the category inferer and normalizer can share the rule.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// Tokenize lowercases the input, replaces every run of non-alphanumeric
// characters with a single space, drops stopwords and tokens shorter than
// MinTokenLength, deduplicates preserving first-occurrence order, and caps
// the result at MaxTokens. Empty or entirely-filtered input yields an empty
// (non-nil) slice.
func Tokenize(input string) []string {
	lowered := strings.ToLower(input)

	var b strings.Builder
	b.Grow(len(lowered))
	lastWasSpace := false
	for _, r := range lowered {
		if isAlnum(r) {
			b.WriteRune(r)
			lastWasSpace = false
		} else if !lastWasSpace {
			b.WriteRune(' ')
			lastWasSpace = true
		}
	}

	fields := strings.Fields(b.String())
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, MaxTokens)

	for _, tok := range fields {
		if len(out) >= MaxTokens {
			break
		}
		if len(tok) < MinTokenLength {
			continue
		}
		if IsStopword(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}

	return out
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
