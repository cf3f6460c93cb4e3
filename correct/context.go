package correct

import (
	"context"
	"strings"
	"unicode/utf8"
)

// contextStage re-predicts words that are rare in general language use by
// masking them and asking the language model for a replacement. Sentences
// shorter than three words pass through untouched, and any prediction
// failure leaves the affected word alone rather than failing the stage.
type contextStage struct {
	freq   Frequencies
	pred   Predictor
	rarity float64
}

func (s *contextStage) method() Method { return MethodContext }

func (s *contextStage) run(ctx context.Context, st state) (state, []Record, error) {
	parts := strings.Split(st.text, ".")
	sentences := make([]string, 0, len(parts))
	var records []Record

	// wordBase tracks how many words the previous sentences contributed,
	// so sentence-local indexes can be mapped back to input positions.
	wordBase := 0
	for _, part := range parts {
		sentence := strings.TrimSpace(part)
		if sentence == "" {
			continue
		}
		words := strings.Fields(sentence)
		if len(words) < 3 {
			sentences = append(sentences, sentence)
			wordBase += len(words)
			continue
		}

		changed := false
		for i := 0; i < len(words); i++ {
			word := words[i]
			if s.freq.Rel(word) >= s.rarity || utf8.RuneCountInString(word) <= 2 {
				continue
			}
			tokens := append([]string(nil), words...)
			predictions, err := s.pred.PredictMasked(ctx, tokens, i)
			if err != nil || len(predictions) == 0 {
				continue
			}
			top := predictions[0]
			if !isAlphaWord(top.Token) || utf8.RuneCountInString(top.Token) <= 1 {
				continue
			}
			corrected := preserveCasePunct(word, top.Token)

			pos := wordBase + i
			if pos >= len(st.orig) {
				pos = len(st.orig) - 1
			}
			alternatives := make([]string, 0, 2)
			for _, p := range predictions[1:] {
				if len(alternatives) == 2 {
					break
				}
				alternatives = append(alternatives, p.Token)
			}
			records = append(records, Record{
				Position:     st.orig[pos],
				Original:     word,
				Corrected:    corrected,
				Method:       MethodContext,
				Confidence:   top.Score,
				Alternatives: alternatives,
			})
			words[i] = corrected
			changed = true
		}

		if changed {
			sentences = append(sentences, strings.Join(words, " "))
		} else {
			sentences = append(sentences, sentence)
		}
		wordBase += len(words)
	}

	out := strings.Join(sentences, ". ")
	if strings.HasSuffix(st.text, ".") && !strings.HasSuffix(out, ".") {
		out += "."
	}
	st.text = out
	if n := len(strings.Fields(out)); n != len(st.orig) {
		st.orig = identityIndexes(n)
	}
	return st, records, nil
}
