package correct

import (
	"context"
	"strings"
)

// spellStage replaces unknown words with the top-ranked dictionary
// candidate within edit distance two, preserving the original token's
// casing and trailing punctuation.
type spellStage struct {
	dict Dictionary
}

func (s *spellStage) method() Method { return MethodSpell }

func (s *spellStage) run(_ context.Context, st state) (state, []Record, error) {
	tokens := strings.Fields(st.text)
	var records []Record
	for i, token := range tokens {
		key := cleanAlpha(token)
		if key == "" || s.dict.Known(key) {
			continue
		}
		candidates := s.dict.Candidates(key)
		if len(candidates) == 0 {
			continue
		}
		corrected := preserveCasePunct(token, candidates[0])
		suggestions := candidates
		if len(suggestions) > 3 {
			suggestions = suggestions[:3]
		}
		records = append(records, Record{
			Position:    st.orig[i],
			Original:    token,
			Corrected:   corrected,
			Method:      MethodSpell,
			Suggestions: suggestions,
		})
		tokens[i] = corrected
	}
	st.text = strings.Join(tokens, " ")
	return st, records, nil
}
