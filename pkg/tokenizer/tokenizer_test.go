package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{}},
		{"all stopwords and units", "2 lb oz", []string{}},
		{"simple ingredient", "Chicken Breast", []string{"chicken", "breast"}},
		{"strips punctuation", "tomato, roma (2ct)", []string{"tomato", "roma", "2ct"}},
		{"drops short tokens", "a ox to egg", []string{"egg"}},
		{"dedupes preserving order", "milk whole milk 2% milk", []string{"milk", "whole"}},
		{"caps at ten tokens", "aaa bbb ccc ddd eee fff ggg hhh iii jjj kkk lll",
			[]string{"aaa", "bbb", "ccc", "ddd", "eee", "fff", "ggg", "hhh", "iii", "jjj"}},
		{"fresh organic descriptors dropped", "fresh organic large red bell pepper",
			[]string{"red", "bell", "pepper"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.input)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, len(got), MaxTokens)
			for _, tok := range got {
				assert.GreaterOrEqual(t, len(tok), MinTokenLength)
				assert.False(t, IsStopword(tok))
			}
		})
	}
}

func TestTokenizeDeduplicatesFirstOccurrence(t *testing.T) {
	got := Tokenize("beef ground beef chuck")
	assert.Equal(t, []string{"beef", "ground", "chuck"}, got)
}
