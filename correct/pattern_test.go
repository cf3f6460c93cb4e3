package correct

import (
	"context"
	"testing"
)

func TestPatternStage(t *testing.T) {
	dict := &mapDict{known: map[string]bool{
		"mouse": true, "the": true, "is": true, "nice": true, "down": true,
	}}

	t.Run("rewrites confused sequence into dictionary word", func(t *testing.T) {
		s := &patternStage{dict: dict}
		st := state{text: "The rnouse is nice.", orig: identityIndexes(4)}
		out, records, err := s.run(context.Background(), st)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if out.text != "The mouse is nice." {
			t.Fatalf("text = %q, want %q", out.text, "The mouse is nice.")
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		rec := records[0]
		if rec.Method != MethodPattern {
			t.Errorf("method = %q, want %q", rec.Method, MethodPattern)
		}
		if rec.Pattern != "rn → m" {
			t.Errorf("pattern = %q, want %q", rec.Pattern, "rn → m")
		}
		if rec.Position != 1 || rec.Original != "rnouse" || rec.Corrected != "mouse" {
			t.Errorf("record = %+v", rec)
		}
	})

	t.Run("rejects rewrites that are not dictionary words", func(t *testing.T) {
		s := &patternStage{dict: dict}
		st := state{text: "rnxyz", orig: identityIndexes(1)}
		out, records, _ := s.run(context.Background(), st)
		if len(records) != 0 {
			t.Fatalf("got %d records, want 0", len(records))
		}
		if out.text != "rnxyz" {
			t.Fatalf("text = %q, want unchanged", out.text)
		}
	})

	t.Run("without dictionary accepts nothing", func(t *testing.T) {
		s := &patternStage{dict: nil}
		st := state{text: "The rnouse is nice.", orig: identityIndexes(4)}
		out, records, err := s.run(context.Background(), st)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if len(records) != 0 {
			t.Fatalf("got %d records, want 0", len(records))
		}
		if out.text != "The rnouse is nice." {
			t.Fatalf("text = %q, want unchanged", out.text)
		}
	})

	t.Run("first matching pattern wins", func(t *testing.T) {
		// "cl" and "vv" both occur; "cl" is listed first and already
		// yields a dictionary word, so "vv" is never tried.
		d := &mapDict{known: map[string]bool{"dovvn": true, "down": true}}
		s := &patternStage{dict: d}
		st := state{text: "clovvn", orig: identityIndexes(1)}
		_, records, _ := s.run(context.Background(), st)
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if records[0].Pattern != "cl → d" {
			t.Errorf("pattern = %q, want %q", records[0].Pattern, "cl → d")
		}
		if records[0].Corrected != "dovvn" {
			t.Errorf("corrected = %q, want %q", records[0].Corrected, "dovvn")
		}
	})

	t.Run("lowercases the token before matching", func(t *testing.T) {
		s := &patternStage{dict: dict}
		st := state{text: "RNOUSE", orig: identityIndexes(1)}
		out, records, _ := s.run(context.Background(), st)
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if out.text != "mouse" {
			t.Fatalf("text = %q, want %q", out.text, "mouse")
		}
	})
}
