package receipt

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedLine is one kept OCR line after ignore-pattern filtering, split
// into its raw price/qty/item-name components.
type ParsedLine struct {
	RawLine    string
	ItemName   string
	QtyText    string
	Price      *float64
}

// ParseResult is the full output of Parse: kept lines plus counts of
// lines seen and discarded, and the vendor/purchase-date extracted from
// the header region.
type ParseResult struct {
	Lines          []ParsedLine
	TotalLines     int
	DiscardedLines int
	VendorName     string
	PurchasedAt    string // YYYY-MM-DD, empty if not found
}

var ignorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)subtotal`),
	regexp.MustCompile(`(?i)\btotal\b`),
	regexp.MustCompile(`(?i)\btax\b`),
	regexp.MustCompile(`(?i)\bvisa\b`),
	regexp.MustCompile(`(?i)\bmastercard\b`),
	regexp.MustCompile(`(?i)\bcash\b`),
	regexp.MustCompile(`(?i)\bchange\b`),
	regexp.MustCompile(`(?i)\bauth\b`),
	regexp.MustCompile(`(?i)thank you`),
	regexp.MustCompile(`(?i)\bsavings\b|\bdiscount\b|\bcoupon\b`),
	regexp.MustCompile(`(?i)\bbalance\b|\bpoints\b|\brewards\b`),
	regexp.MustCompile(`^\d{1,2}[/\-:]\d{1,2}([/\-:]\d{2,4})?\s*([AaPp][Mm])?$`), // date/time-only
	regexp.MustCompile(`^[-=_*#]{3,}$`),                                        // separator runs
	regexp.MustCompile(`^\d+$`),                                                // pure digits
}

var headerSkip = regexp.MustCompile(`(?i)^\d|tel|phone|fax|^[-=_*#]{3,}$`)

var priceDollar = regexp.MustCompile(`\$\s?(\d+\.\d{2})`)
var priceTrailing = regexp.MustCompile(`(\d+\.\d{2})\s*$`)

var qtyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*@`),
	regexp.MustCompile(`(?i)\bx\s?(\d+(?:\.\d+)?)\b`),
	regexp.MustCompile(`(?i)qty:?\s*(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(ct|ea|lb|oz|kg|g|dz|pk)\b`),
}

var dateMDY = regexp.MustCompile(`\b(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})\b`)
var dateISO = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

const (
	minPriceSanity = 0.10
	maxPriceSanity = 1000.0
)

// Parse splits raw OCR text into kept item lines plus header-derived
// vendor name and purchase date.
func Parse(rawText string) ParseResult {
	rawLines := strings.Split(rawText, "\n")
	result := ParseResult{TotalLines: len(rawLines)}

	for i, line := range rawLines {
		trimmed := strings.TrimSpace(line)
		if i < 5 && result.VendorName == "" {
			if candidate := extractVendorCandidate(trimmed); candidate != "" {
				result.VendorName = candidate
			}
		}
		if result.PurchasedAt == "" {
			if date := extractDate(trimmed); date != "" {
				result.PurchasedAt = date
			}
		}

		if shouldDiscard(trimmed) {
			result.DiscardedLines++
			continue
		}

		// The first few lines are the header region (store name, address,
		// phone, date/time) per extractVendorCandidate above; none of
		// those carry a price, so only let a header-region line through
		// to item parsing if it actually looks like a priced line.
		if i < 5 && !containsPrice(trimmed) {
			result.DiscardedLines++
			continue
		}

		parsed, ok := parseItemLine(trimmed)
		if !ok {
			result.DiscardedLines++
			continue
		}
		result.Lines = append(result.Lines, parsed)
	}

	return result
}

func shouldDiscard(line string) bool {
	if len(line) < 3 {
		return true
	}
	for _, pat := range ignorePatterns {
		if pat.MatchString(line) {
			return true
		}
	}
	return false
}

func containsPrice(line string) bool {
	return priceDollar.MatchString(line) || priceTrailing.MatchString(line)
}

func extractVendorCandidate(line string) string {
	if line == "" {
		return ""
	}
	if headerSkip.MatchString(line) {
		return ""
	}
	if !hasLetter(line) {
		return ""
	}
	return line
}

func extractDate(line string) string {
	if m := dateISO.FindStringSubmatch(line); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	if m := dateMDY.FindStringSubmatch(line); m != nil {
		month, day, year := m[1], m[2], m[3]
		if len(year) == 2 {
			y, err := strconv.Atoi(year)
			if err == nil {
				if y < 50 {
					year = "20" + pad2(year)
				} else {
					year = "19" + pad2(year)
				}
			}
		}
		return year + "-" + pad2(month) + "-" + pad2(day)
	}
	return ""
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func parseItemLine(line string) (ParsedLine, bool) {
	residual := line
	var price *float64

	if m := priceDollar.FindStringSubmatch(residual); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= minPriceSanity && v < maxPriceSanity {
			price = &v
			residual = strings.Replace(residual, m[0], "", 1)
		}
	} else if m := priceTrailing.FindStringSubmatch(residual); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= minPriceSanity && v < maxPriceSanity {
			price = &v
			residual = priceTrailing.ReplaceAllString(residual, "")
		}
	}

	qtyText := ""
	for _, pat := range qtyPatterns {
		if m := pat.FindString(residual); m != "" {
			qtyText = strings.TrimSpace(m)
			residual = strings.Replace(residual, m, "", 1)
			break
		}
	}

	itemName := strings.TrimSpace(collapseSpaces(residual))
	if len(itemName) < 3 || !hasLetter(itemName) {
		return ParsedLine{}, false
	}

	return ParsedLine{
		RawLine:  line,
		ItemName: itemName,
		QtyText:  qtyText,
		Price:    price,
	}, true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func collapseSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
