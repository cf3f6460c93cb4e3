package correct

import (
	"context"
	"strings"
)

// confusionPatterns maps character sequences that OCR engines commonly
// misread to their intended forms. Order matters: for each token the first
// pattern that yields a dictionary word wins.
var confusionPatterns = []struct {
	Seen string
	Fix  string
}{
	{"rn", "m"},
	{"cl", "d"},
	{"li", "h"},
	{"vv", "w"},
	{"nn", "m"},
	{"1", "l"},
	{"0", "O"},
	{"5", "S"},
	{"8", "B"},
	{"|", "I"},
	{"ii", "n"},
	{"oi", "a"},
	{"ai", "w"},
}

// patternStage rewrites tokens whose lowercase form contains a known
// confusion sequence, but only when the rewritten token is a dictionary
// word. Without a dictionary the stage runs and accepts nothing.
type patternStage struct {
	dict Dictionary
}

func (s *patternStage) method() Method { return MethodPattern }

func (s *patternStage) run(_ context.Context, st state) (state, []Record, error) {
	tokens := strings.Fields(st.text)
	var records []Record
	for i, token := range tokens {
		lower := strings.ToLower(token)
		for _, p := range confusionPatterns {
			if !strings.Contains(lower, p.Seen) {
				continue
			}
			candidate := strings.ReplaceAll(lower, p.Seen, p.Fix)
			if s.dict == nil || !s.dict.Known(candidate) {
				continue
			}
			records = append(records, Record{
				Position:  st.orig[i],
				Original:  token,
				Corrected: candidate,
				Method:    MethodPattern,
				Pattern:   p.Seen + " → " + p.Fix,
			})
			tokens[i] = candidate
			break
		}
	}
	st.text = strings.Join(tokens, " ")
	return st, records, nil
}
