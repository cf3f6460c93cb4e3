package correct

import (
	"strings"
	"unicode"
)

// cleanAlpha lowercases word and strips every non-letter rune. It is the
// canonical key used for dictionary and vocabulary lookups.
func cleanAlpha(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// isAlphaWord reports whether word is non-empty and consists entirely of
// letters.
func isAlphaWord(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isAllUpper reports whether word contains at least one letter and no
// lowercase letters.
func isAllUpper(word string) bool {
	hasLetter := false
	for _, r := range word {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		hasLetter = true
	}
	return hasLetter
}

// firstUpper reports whether the first rune of word is an uppercase letter.
func firstUpper(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

// capitalize uppercases the first rune of word and lowercases the rest.
func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// trailingNonLetters returns the suffix of word made of non-letter runes,
// such as a closing comma or period carried on the token.
func trailingNonLetters(word string) string {
	runes := []rune(word)
	i := len(runes)
	for i > 0 && !unicode.IsLetter(runes[i-1]) {
		i--
	}
	return string(runes[i:])
}

// preserveCasePunct shapes replacement to match the casing of original and
// re-appends original's trailing punctuation. A fully uppercase original
// yields a fully uppercase replacement; an original with a leading capital
// yields a capitalized replacement. Interior punctuation of the original is
// not reconstructed. The function never fails: with an empty original or
// replacement it returns the replacement unchanged.
func preserveCasePunct(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	shaped := replacement
	switch {
	case isAllUpper(original):
		shaped = strings.ToUpper(replacement)
	case firstUpper(original):
		shaped = capitalize(replacement)
	}
	return shaped + trailingNonLetters(original)
}
