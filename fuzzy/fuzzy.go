// Package fuzzy provides approximate string matching against a reference
// vocabulary. Scores are normalized indel similarity (substitutions count as
// a delete plus an insert), expressed as an integer between 0 and 100.
package fuzzy

import (
	"math"
	"strings"
)

// Ratio returns the similarity of a and b as an integer in [0, 100].
// It is computed as 200*LCS(a,b)/(len(a)+len(b)), rounded half away from
// zero. Two empty strings are considered identical.
func Ratio(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	m := lcsLength(ra, rb)
	return int(math.Round(200 * float64(m) / float64(total)))
}

// lcsLength computes the longest common subsequence length with a two-row
// dynamic program.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// Matcher finds the single best vocabulary match for a word.
type Matcher struct {
	words []string
}

// NewMatcher builds a matcher over the given vocabulary. Entries are
// lowercased and deduplicated; order is preserved, and on score ties the
// earlier entry wins.
func NewMatcher(words []string) *Matcher {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return &Matcher{words: out}
}

// Len reports the vocabulary size.
func (m *Matcher) Len() int { return len(m.words) }

// Words returns a copy of the vocabulary in matcher order.
func (m *Matcher) Words() []string {
	out := make([]string, len(m.words))
	copy(out, m.words)
	return out
}

// BestMatch returns the vocabulary entry with the highest Ratio against
// word. ok is false when the vocabulary is empty.
func (m *Matcher) BestMatch(word string) (match string, score int, ok bool) {
	if len(m.words) == 0 {
		return "", 0, false
	}
	best := -1
	for _, w := range m.words {
		s := Ratio(word, w)
		if s > best {
			best = s
			match = w
		}
	}
	return match, best, true
}
