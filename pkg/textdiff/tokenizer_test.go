package textdiff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeLossless(t *testing.T) {
	cases := []string{
		"",
		"single",
		"  leading and trailing  ",
		"tabs\tand\nnewlines\r\nmixed",
		"punctuation, stays. attached!",
		"unicode: résumé naïve 日本語",
		"   ",
	}

	for _, input := range cases {
		tokens := tokenize(input)
		var sb strings.Builder
		for _, tok := range tokens {
			sb.WriteString(tok.text)
		}
		assert.Equal(t, input, sb.String(), "tokens must reassemble the input")
	}
}

func TestTokenizeAlternatesRuns(t *testing.T) {
	tokens := tokenize("one two  three")

	assert.Len(t, tokens, 5)
	for i, tok := range tokens {
		if i%2 == 0 {
			assert.True(t, tok.word, "token %d should be a word", i)
		} else {
			assert.False(t, tok.word, "token %d should be whitespace", i)
		}
	}
	assert.Equal(t, 3, countWords(tokens))
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Nil(t, tokenize(""))
}

func TestTokenizeDeterministic(t *testing.T) {
	input := "the same input\talways\n yields the same tokens"
	assert.Equal(t, tokenize(input), tokenize(input))
}
