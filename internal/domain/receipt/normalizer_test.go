package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ExactAbbreviationHighConfidence(t *testing.T) {
	n := Normalize(ParsedLine{ItemName: "chk brst"})
	assert.Equal(t, "chicken breast", n.Name)
	assert.GreaterOrEqual(t, n.Confidence, exactAbbrevConfidence)
}

func TestNormalize_PartialAbbreviationMidConfidence(t *testing.T) {
	n := Normalize(ParsedLine{ItemName: "grnd bf patties"})
	assert.Contains(t, n.Name, "ground")
	assert.Contains(t, n.Name, "beef")
	assert.GreaterOrEqual(t, n.Confidence, partialAbbrevConfidence)
	assert.Less(t, n.Confidence, exactAbbrevConfidence)
}

func TestNormalize_UnrecognizedLowConfidence(t *testing.T) {
	n := Normalize(ParsedLine{ItemName: "zzyzx widget"})
	assert.Less(t, n.Confidence, 0.50)
}

func TestNormalize_QtyExtractionAddsConfidenceAndUnit(t *testing.T) {
	n := Normalize(ParsedLine{ItemName: "tom roma", QtyText: "2.5 LB"})
	require.NotNil(t, n.QtyEstimate)
	assert.InDelta(t, 2.5, *n.QtyEstimate, 1e-9)
	assert.Equal(t, "lb", n.Unit)
}

func TestNormalize_ConfidenceClampedToOne(t *testing.T) {
	n := Normalize(ParsedLine{ItemName: "chk brst", QtyText: "2 LB"})
	assert.LessOrEqual(t, n.Confidence, 1.0)
}

func TestNormalize_CountUnitAliasesMapTogether(t *testing.T) {
	n := Normalize(ParsedLine{ItemName: "lg eggs", QtyText: "12 CT"})
	assert.Equal(t, "count", n.Unit)
}
