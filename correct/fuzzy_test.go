package correct

import (
	"context"
	"testing"

	"github.com/wudi/ocrkit/fuzzy"
)

func TestFuzzyStage(t *testing.T) {
	t.Run("replaces close match above threshold", func(t *testing.T) {
		s := &fuzzyStage{
			vocab:     fuzzy.NewMatcher([]string{"house"}),
			threshold: DefaultFuzzyThreshold,
		}
		st := state{text: "the housee stands", orig: identityIndexes(3)}
		out, records, err := s.run(context.Background(), st)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if out.text != "the house stands" {
			t.Fatalf("text = %q, want %q", out.text, "the house stands")
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		rec := records[0]
		if rec.Original != "housee" || rec.Corrected != "house" || rec.Position != 1 {
			t.Errorf("record = %+v", rec)
		}
		if rec.SimilarityScore != 91 {
			t.Errorf("similarity = %d, want 91", rec.SimilarityScore)
		}
	})

	t.Run("score at threshold is not corrected", func(t *testing.T) {
		// 11 shared of 13+13 runes scores exactly 85.
		s := &fuzzyStage{
			vocab:     fuzzy.NewMatcher([]string{"abcdefghijklm"}),
			threshold: DefaultFuzzyThreshold,
		}
		st := state{text: "abcdefghijkxy", orig: identityIndexes(1)}
		out, records, _ := s.run(context.Background(), st)
		if len(records) != 0 {
			t.Fatalf("got %d records, want 0", len(records))
		}
		if out.text != "abcdefghijkxy" {
			t.Fatalf("text = %q, want unchanged", out.text)
		}
	})

	t.Run("score just above threshold is corrected", func(t *testing.T) {
		// 6 shared of 7+7 runes scores 86.
		s := &fuzzyStage{
			vocab:     fuzzy.NewMatcher([]string{"abcdefg"}),
			threshold: DefaultFuzzyThreshold,
		}
		st := state{text: "abcdefx", orig: identityIndexes(1)}
		out, records, _ := s.run(context.Background(), st)
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if records[0].SimilarityScore != 86 {
			t.Errorf("similarity = %d, want 86", records[0].SimilarityScore)
		}
		if out.text != "abcdefg" {
			t.Fatalf("text = %q, want %q", out.text, "abcdefg")
		}
	})

	t.Run("skips short and exact words", func(t *testing.T) {
		calls := 0
		s := &fuzzyStage{
			vocab: vocabFunc(func(word string) (string, int, bool) {
				calls++
				if word == "house" {
					return "house", 100, true
				}
				return "house", 90, true
			}),
			threshold: DefaultFuzzyThreshold,
		}
		st := state{text: "at house", orig: identityIndexes(2)}
		_, records, _ := s.run(context.Background(), st)
		if len(records) != 0 {
			t.Fatalf("got %d records, want 0", len(records))
		}
		if calls != 1 {
			t.Errorf("vocabulary consulted %d times, want 1 (short word skipped)", calls)
		}
	})

	t.Run("preserves case and punctuation", func(t *testing.T) {
		s := &fuzzyStage{
			vocab:     fuzzy.NewMatcher([]string{"house"}),
			threshold: DefaultFuzzyThreshold,
		}
		st := state{text: "Housee,", orig: identityIndexes(1)}
		out, records, _ := s.run(context.Background(), st)
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if out.text != "House," {
			t.Fatalf("text = %q, want %q", out.text, "House,")
		}
	})
}
