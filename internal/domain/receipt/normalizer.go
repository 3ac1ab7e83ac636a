package receipt

import (
	"regexp"
	"strconv"
	"strings"
)

// Normalized is the output of Normalize: a canonical name, unit, quantity
// estimate, and a confidence in [0,1].
type Normalized struct {
	Name       string
	Unit       string
	QtyEstimate *float64
	Confidence  float64
}

const (
	exactAbbrevConfidence   = 0.90
	partialAbbrevConfidence = 0.50
	unrecognizedConfidence  = 0.30
	qtyMatchDelta           = 0.08
)

// abbreviationMap is the exact-hit lowercase abbreviation -> canonical
// name dictionary. Part of the matching contract: additions are welcome,
// removals can silently break coverage for receipts already seen.
var abbreviationMap = map[string]string{
	"chk brst":  "chicken breast",
	"chk thgh":  "chicken thigh",
	"grnd bf":   "ground beef",
	"grnd trky": "ground turkey",
	"tom roma":  "roma tomatoes",
	"tom":       "tomato",
	"yel onion": "yellow onion",
	"grn pepper": "green pepper",
	"red pepper": "red pepper",
	"russet pot": "russet potato",
	"iceberg lt": "iceberg lettuce",
	"rom lettuce": "romaine lettuce",
	"whl milk":  "whole milk",
	"2% milk":   "reduced fat milk",
	"lg eggs":   "large eggs",
	"shrd chddr": "shredded cheddar",
	"sour crm":  "sour cream",
	"wht bread": "wheat bread",
	"wh wheat":  "whole wheat bread",
	"unsltd btr": "unsalted butter",
	"ol oil":    "olive oil",
	"can bns":   "canned beans",
	"blk beans": "black beans",
}

// partialAbbreviationTokens maps individual abbreviation tokens to a
// canonical word; used when no exact multi-word hit is found but at
// least one token of the raw name matches a known abbreviation token.
var partialAbbreviationTokens = map[string]string{
	"chk":   "chicken",
	"brst":  "breast",
	"thgh":  "thigh",
	"grnd":  "ground",
	"bf":    "beef",
	"trky":  "turkey",
	"tom":   "tomato",
	"yel":   "yellow",
	"grn":   "green",
	"pot":   "potato",
	"lt":    "lettuce",
	"whl":   "whole",
	"lg":    "large",
	"shrd":  "shredded",
	"chddr": "cheddar",
	"crm":   "cream",
	"wht":   "wheat",
	"btr":   "butter",
	"ol":    "olive",
	"bns":   "beans",
	"blk":   "black",
	"unsltd": "unsalted",
}

var unitMap = map[string]string{
	"lb": "lb", "lbs": "lb", "pound": "lb", "pounds": "lb",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
	"ct": "count", "count": "count", "ea": "count", "each": "count",
	"kg": "kg", "g": "g", "gram": "g", "grams": "g",
	"gal": "gal", "gallon": "gal",
	"qt": "qt", "quart": "qt",
	"pt": "pt", "pint": "pt",
	"dz": "dozen", "dozen": "dozen",
	"pk": "pack", "pack": "pack",
	"fl": "fl oz",
}

var qtyNumberPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*([a-z%]+)?`)

// Normalize maps a parsed line's raw item name and qty text to a
// canonical name, unit, quantity estimate, and confidence.
func Normalize(line ParsedLine) Normalized {
	rawLower := strings.ToLower(strings.TrimSpace(line.ItemName))

	name := rawLower
	confidence := unrecognizedConfidence

	if canonical, ok := abbreviationMap[rawLower]; ok {
		name = canonical
		confidence = exactAbbrevConfidence
	} else if canonical, matched := partialMatch(rawLower); matched {
		name = canonical
		confidence = partialAbbrevConfidence
	}

	unit := ""
	var qty *float64
	if line.QtyText != "" {
		if m := qtyNumberPattern.FindStringSubmatch(line.QtyText); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				qty = &v
				confidence += qtyMatchDelta
			}
			if len(m) > 2 && m[2] != "" {
				if canonicalUnit, ok := unitMap[strings.ToLower(m[2])]; ok {
					unit = canonicalUnit
				}
			}
		}
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0 {
		confidence = 0
	}

	return Normalized{
		Name:        name,
		Unit:        unit,
		QtyEstimate: qty,
		Confidence:  confidence,
	}
}

// partialMatch looks for any token of the raw name that is a known
// abbreviation token, returning a canonicalized (but not necessarily
// fully canonical) name built by substituting matched tokens.
func partialMatch(rawLower string) (string, bool) {
	tokens := strings.Fields(rawLower)
	if len(tokens) == 0 {
		return "", false
	}
	matchedAny := false
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		if canonical, ok := partialAbbreviationTokens[tok]; ok {
			out[i] = canonical
			matchedAny = true
		} else {
			out[i] = tok
		}
	}
	if !matchedAny {
		return "", false
	}
	return strings.Join(out, " "), true
}
