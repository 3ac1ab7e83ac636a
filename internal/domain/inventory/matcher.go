package inventory

import (
	"sort"

	"github.com/dinnerarbiter/core/pkg/tokenizer"
)

// MatchThreshold is the minimum overlap score a candidate must clear to be
// considered a match.
const MatchThreshold = 0.66

// exactTokenScore and prefixTokenScore are the per-token contributions to
// an overlap score.
const (
	exactTokenScore  = 1.0
	prefixTokenScore = 0.80

	prefixMaxExtraChars  = 3
	prefixMinLengthRatio = 0.70
)

// Candidate is a pantry item name to score an ingredient name against.
type Candidate struct {
	Name string
}

// MatchResult is the outcome of scoring one candidate.
type MatchResult struct {
	Name  string
	Score float64
}

// Match scores ingredientName against every candidate and returns the
// best one if its score clears MatchThreshold, or ok=false otherwise.
// Candidates are ranked by score descending, then by name ascending.
func Match(ingredientName string, candidates []Candidate) (result MatchResult, ok bool) {
	ingredientTokens := tokenizer.Tokenize(ingredientName)
	if len(ingredientTokens) == 0 {
		return MatchResult{}, false
	}

	scored := make([]MatchResult, 0, len(candidates))
	for _, c := range candidates {
		itemTokens := tokenizer.Tokenize(c.Name)
		scored = append(scored, MatchResult{
			Name:  c.Name,
			Score: OverlapScore(ingredientTokens, itemTokens),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Name < scored[j].Name
	})

	if len(scored) == 0 || scored[0].Score < MatchThreshold {
		return MatchResult{}, false
	}
	return scored[0], true
}

// OverlapScore computes the whole-token-overlap-plus-constrained-prefix
// score between two already-tokenized names, normalized by the number of
// ingredient tokens and capped at 1.0. No substring matching is ever
// performed.
func OverlapScore(ingredientTokens, itemTokens []string) float64 {
	if len(ingredientTokens) == 0 {
		return 0
	}

	itemSet := make(map[string]struct{}, len(itemTokens))
	for _, t := range itemTokens {
		itemSet[t] = struct{}{}
	}

	var total float64
	for _, it := range ingredientTokens {
		if _, exact := itemSet[it]; exact {
			total += exactTokenScore
			continue
		}
		if bestPrefixMatch(it, itemTokens) {
			total += prefixTokenScore
		}
	}

	score := total / float64(len(ingredientTokens))
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// bestPrefixMatch reports whether ingredient token tok is a constrained
// prefix match against any token in itemTokens: one string must be a
// strict prefix of the other, the extra-character count must be at most
// prefixMaxExtraChars, and the shorter/longer length ratio must be at
// least prefixMinLengthRatio. This blocks "ham"->"shampoo" (not a
// prefix) and "egg"->"eggplant" (ratio too low) while accepting
// "tomato"<->"tomatoes".
func bestPrefixMatch(tok string, itemTokens []string) bool {
	for _, other := range itemTokens {
		if tok == other {
			continue // already handled as exact match
		}
		var shorter, longer string
		if len(tok) < len(other) {
			shorter, longer = tok, other
		} else if len(tok) > len(other) {
			shorter, longer = other, tok
		} else {
			continue // equal length, not a strict prefix candidate
		}

		if len(shorter) == 0 || !isStrictPrefix(shorter, longer) {
			continue
		}

		extra := len(longer) - len(shorter)
		if extra > prefixMaxExtraChars {
			continue
		}

		ratio := float64(len(shorter)) / float64(len(longer))
		if ratio < prefixMinLengthRatio {
			continue
		}

		return true
	}
	return false
}

func isStrictPrefix(shorter, longer string) bool {
	if len(shorter) >= len(longer) {
		return false
	}
	return longer[:len(shorter)] == shorter
}
