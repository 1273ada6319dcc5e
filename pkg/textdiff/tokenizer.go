package textdiff

import "unicode"

// token is a maximal run of either non-whitespace ("word") or whitespace
// characters. Concatenating a token sequence in order reproduces the input
// text byte for byte.
type token struct {
	text string
	word bool
}

// tokenize splits text into alternating word and whitespace runs.
// It is pure and deterministic: the same input always yields the same tokens.
func tokenize(text string) []token {
	if text == "" {
		return nil
	}

	var tokens []token
	start := 0
	inSpace := false
	first := true

	for i, r := range text {
		isSpace := unicode.IsSpace(r)
		if first {
			inSpace = isSpace
			first = false
			continue
		}
		if isSpace != inSpace {
			tokens = append(tokens, token{text: text[start:i], word: !inSpace})
			start = i
			inSpace = isSpace
		}
	}
	tokens = append(tokens, token{text: text[start:], word: !inSpace})

	return tokens
}

// countWords returns the number of word tokens (whitespace runs excluded).
func countWords(tokens []token) int {
	n := 0
	for _, t := range tokens {
		if t.word {
			n++
		}
	}
	return n
}
