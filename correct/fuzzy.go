package correct

import (
	"context"
	"strings"
	"unicode/utf8"
)

// fuzzyStage replaces words that score strictly above the similarity
// threshold against the corpus vocabulary. Words of one or two letters are
// left alone, as are exact vocabulary hits.
type fuzzyStage struct {
	vocab     Vocabulary
	threshold int
}

func (s *fuzzyStage) method() Method { return MethodFuzzy }

func (s *fuzzyStage) run(_ context.Context, st state) (state, []Record, error) {
	tokens := strings.Fields(st.text)
	var records []Record
	for i, token := range tokens {
		key := cleanAlpha(token)
		if utf8.RuneCountInString(key) <= 2 {
			continue
		}
		match, score, ok := s.vocab.BestMatch(key)
		if !ok || score <= s.threshold || match == key {
			continue
		}
		corrected := preserveCasePunct(token, match)
		records = append(records, Record{
			Position:        st.orig[i],
			Original:        token,
			Corrected:       corrected,
			Method:          MethodFuzzy,
			SimilarityScore: score,
		})
		tokens[i] = corrected
	}
	st.text = strings.Join(tokens, " ")
	return st, records, nil
}
