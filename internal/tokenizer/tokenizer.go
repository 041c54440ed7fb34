// Package tokenizer extracts normalised word tokens from raw text. A token
// is a maximal run of Unicode letters, lower-cased; digits, punctuation,
// and whitespace act as separators and never appear inside a token.
package tokenizer

import (
	"iter"
	"strings"
	"unicode"
)

// Tokens returns a lazy sequence of the tokens in text. The sequence is
// finite and can be ranged over any number of times. Any string is valid
// input; empty input yields an empty sequence.
func Tokens(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for i, r := range text {
			if unicode.IsLetter(r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				if !yield(strings.ToLower(text[start:i])) {
					return
				}
				start = -1
			}
		}
		if start >= 0 {
			yield(strings.ToLower(text[start:]))
		}
	}
}

// Count folds the token sequence of text into a term-frequency profile.
func Count(text string) map[string]int {
	counts := make(map[string]int)
	for tok := range Tokens(text) {
		counts[tok]++
	}
	return counts
}
