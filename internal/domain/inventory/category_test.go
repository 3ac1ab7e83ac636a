package inventory

import (
	"testing"

	"github.com/dinnerarbiter/core/pkg/tokenizer"
	"github.com/stretchr/testify/assert"
)

func TestInferCategory(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Category
	}{
		{"plain protein", "chicken breast", CategoryProtein},
		{"generic ground alone", "ground", CategoryOther},
		{"ground beef", "ground beef", CategoryProtein},
		{"ground coffee is not a core protein", "ground coffee", CategoryOther},
		{"produce", "roma tomatoes", CategoryProduce},
		{"dairy", "cheddar cheese", CategoryDairy},
		{"frozen overrides pantry-like word", "frozen peas", CategoryFrozen},
		{"bakery", "whole wheat bread", CategoryBakery},
		{"pantry staple", "white rice", CategoryPantry},
		{"unmatched falls to other", "birthday candles", CategoryOther},
		{"english muffin generic validated", "english muffins", CategoryBakery},
		{"english alone unvalidated", "english", CategoryOther},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tokens := tokenizer.Tokenize(tc.input)
			got := InferCategory(tokens)
			assert.Equal(t, tc.want, got, "tokens=%v", tokens)
		})
	}
}

func TestCategoriesCompatible(t *testing.T) {
	assert.True(t, CategoriesCompatible(CategoryOther, CategoryProtein))
	assert.True(t, CategoriesCompatible(CategoryProtein, CategoryOther))
	assert.True(t, CategoriesCompatible(CategoryProtein, CategoryProtein))
	assert.False(t, CategoriesCompatible(CategoryProtein, CategoryDairy))
}
