package correct

import (
	"context"
	"strings"

	"github.com/wudi/ocrkit/langmodel"
)

// mapDict is a hand-rolled Dictionary for stage tests.
type mapDict struct {
	known map[string]bool
	cands map[string][]string
}

func (d *mapDict) Known(word string) bool {
	return d.known[strings.ToLower(word)]
}

func (d *mapDict) Candidates(word string) []string {
	word = strings.ToLower(word)
	if d.known[word] {
		return []string{word}
	}
	return d.cands[word]
}

// vocabFunc adapts a function to the Vocabulary interface.
type vocabFunc func(word string) (string, int, bool)

func (f vocabFunc) BestMatch(word string) (string, int, bool) { return f(word) }

// freqMap reports fixed relative frequencies, zero for unlisted words.
type freqMap map[string]float64

func (m freqMap) Rel(word string) float64 {
	return m[cleanAlpha(word)]
}

// stubPredictor replays canned predictions and captures the call it saw.
type stubPredictor struct {
	available   bool
	predictions []langmodel.Prediction
	err         error

	calls     int
	gotTokens []string
	gotMasked int
}

func (p *stubPredictor) Available() bool { return p.available }

func (p *stubPredictor) PredictMasked(_ context.Context, tokens []string, maskIndex int) ([]langmodel.Prediction, error) {
	p.calls++
	p.gotTokens = append([]string(nil), tokens...)
	p.gotMasked = maskIndex
	if p.err != nil {
		return nil, p.err
	}
	return p.predictions, nil
}

// panicDict blows up on first use, for degradation tests.
type panicDict struct{}

func (panicDict) Known(string) bool          { panic("dictionary backend lost") }
func (panicDict) Candidates(string) []string { panic("dictionary backend lost") }
