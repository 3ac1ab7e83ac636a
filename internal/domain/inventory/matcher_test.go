package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_AcceptsStrongExactOverlap(t *testing.T) {
	result, ok := Match("chicken breast", []Candidate{
		{Name: "chicken breast boneless skinless organic pack"},
	})
	require.True(t, ok)
	assert.Equal(t, "chicken breast boneless skinless organic pack", result.Name)
	assert.InDelta(t, 1.0, result.Score, 1e-9)
}

func TestMatch_WeakPartialOverlapBelowStrongThreshold(t *testing.T) {
	// "chicken breast rice" vs "chicken breast salad wrap": 2 of 3 tokens
	// match exactly (chicken, breast); "rice" has no counterpart.
	score := OverlapScore([]string{"chicken", "breast", "rice"}, []string{"chicken", "breast", "salad", "wrap"})
	assert.InDelta(t, 2.0/3.0, score, 1e-9)
	assert.True(t, score >= 0.66 && score < 0.80, "expected a weak-but-passing match, got %v", score)
}

func TestMatch_RejectsHamVsShampoo(t *testing.T) {
	_, ok := Match("ham", []Candidate{{Name: "shampoo bottle"}})
	assert.False(t, ok)
}

func TestMatch_RejectsEggVsEggplant(t *testing.T) {
	_, ok := Match("egg", []Candidate{{Name: "eggplant"}})
	assert.False(t, ok)
}

func TestMatch_RejectsButterVsButternut(t *testing.T) {
	_, ok := Match("butter", []Candidate{{Name: "butternut squash"}})
	assert.False(t, ok)
}

func TestMatch_AcceptsTomatoVsTomatoes(t *testing.T) {
	result, ok := Match("tomato", []Candidate{{Name: "roma tomatoes"}})
	require.True(t, ok)
	assert.InDelta(t, 0.80, result.Score, 1e-9)
}

func TestMatch_EmptyIngredientTokensNeverMatch(t *testing.T) {
	_, ok := Match("2 lb oz", []Candidate{{Name: "anything"}})
	assert.False(t, ok)
}

func TestMatch_TieBreaksByNameAscending(t *testing.T) {
	result, ok := Match("apple", []Candidate{
		{Name: "zebra apple"},
		{Name: "apple cider"},
	})
	require.True(t, ok)
	assert.Equal(t, "apple cider", result.Name)
}

func TestMatch_ScoreBoundedAtOne(t *testing.T) {
	score := OverlapScore([]string{"beans"}, []string{"beans", "beans"})
	assert.LessOrEqual(t, score, 1.0)
}
