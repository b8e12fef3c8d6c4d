package features

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minTokenLen drops single-character tokens
const minTokenLen = 2

// Tokenizer lowercases text and splits it into word tokens: maximal runs of
// letters, digits and underscores at least two runes long
type Tokenizer struct {
	lower cases.Caser
}

// NewTokenizer creates a tokenizer. A Tokenizer is not safe for concurrent use.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{lower: cases.Lower(language.Und)}
}

// Tokens returns the tokens of text in order
func (t *Tokenizer) Tokens(text string) []string {
	text = t.lower.String(text)

	var tokens []string
	start := -1
	runes := 0
	flush := func(end int) {
		if start >= 0 && runes >= minTokenLen {
			tokens = append(tokens, text[start:end])
		}
		start, runes = -1, 0
	}

	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			runes++
			continue
		}
		flush(i)
	}
	flush(len(text))

	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// NGrams expands tokens into all n-grams with minN <= n <= maxN, shorter
// n-grams first. Tokens of an n-gram are joined by a single space.
func NGrams(tokens []string, minN, maxN int) []string {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}
	if minN == 1 && maxN == 1 {
		return tokens
	}

	var out []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
