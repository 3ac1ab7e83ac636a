package receipt

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ContentHash computes the 64-char hex SHA-256 fingerprint used for
// canonical/duplicate resolution: normalized OCR text, normalized vendor
// name, and extracted purchase date, joined with "|".
func ContentHash(rawText, vendorName, purchasedAt string) string {
	normalizedText := normalizeForHash(rawText)
	normalizedVendor := normalizeForHash(vendorName)

	joined := strings.Join([]string{normalizedText, normalizedVendor, purchasedAt}, "|")
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}

func normalizeForHash(s string) string {
	collapsed := whitespaceRun.ReplaceAllString(s, " ")

	var b strings.Builder
	b.Grow(len(collapsed))
	for _, r := range collapsed {
		if unicode.IsPrint(r) {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(strings.TrimSpace(b.String()))
}
