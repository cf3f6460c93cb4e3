package dictionary

import (
	_ "embed"
	"strings"
	"sync"
)

//go:embed words.txt
var wordsData string

var (
	defaultOnce sync.Once
	defaultDict *Dict
)

// Default returns the built-in English frequency dictionary. It is loaded
// once and shared.
func Default() *Dict {
	defaultOnce.Do(func() {
		d, err := Load(strings.NewReader(wordsData))
		if err != nil {
			d = New(nil)
		}
		defaultDict = d
	})
	return defaultDict
}
