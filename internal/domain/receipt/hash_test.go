package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHash_Is64CharHex(t *testing.T) {
	hash := ContentHash("some receipt text", "Trader Joe's", "2024-07-15")
	assert.Len(t, hash, 64)
}

func TestContentHash_WhitespaceAndCaseInsensitive(t *testing.T) {
	a := ContentHash("Chicken   Breast\n\nTomato", "Trader Joe's", "2024-07-15")
	b := ContentHash("chicken breast tomato", "TRADER JOE'S", "2024-07-15")
	assert.Equal(t, a, b)
}

func TestContentHash_DifferentDateProducesDifferentHash(t *testing.T) {
	a := ContentHash("same text", "vendor", "2024-07-15")
	b := ContentHash("same text", "vendor", "2024-07-16")
	assert.NotEqual(t, a, b)
}

func TestContentHash_StripsNonPrintable(t *testing.T) {
	a := ContentHash("chicken\x00breast", "vendor", "2024-07-15")
	b := ContentHash("chickenbreast", "vendor", "2024-07-15")
	assert.Equal(t, a, b)
}
