package fuzzy

import (
	_ "embed"
	"strings"
	"sync"
)

//go:embed vocabulary.txt
var vocabularyData string

var (
	defaultOnce    sync.Once
	defaultMatcher *Matcher
)

// Default returns the matcher over the built-in vocabulary. The matcher is
// built once and is safe for concurrent use.
func Default() *Matcher {
	defaultOnce.Do(func() {
		defaultMatcher = NewMatcher(parseVocabulary(vocabularyData))
	})
	return defaultMatcher
}

func parseVocabulary(data string) []string {
	lines := strings.Split(data, "\n")
	words := make([]string, 0, len(lines))
	for _, line := range lines {
		w := strings.TrimSpace(line)
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words = append(words, w)
	}
	return words
}
