package fuzzy

import "testing"

func TestRatio(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "house", "house", 100},
		{"both empty", "", "", 100},
		{"disjoint", "abc", "xyz", 0},
		{"one substitution", "mouse", "house", 80},
		{"rounds down to 85", "abcdefghijklm", "abcdefghijkxy", 85},
		{"rounds up to 86", "abcdefg", "abcdefx", 86},
		{"empty against word", "", "word", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Ratio(tc.a, tc.b); got != tc.want {
				t.Fatalf("Ratio(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
			if got := Ratio(tc.b, tc.a); got != tc.want {
				t.Fatalf("Ratio(%q, %q) = %d, want %d (not symmetric)", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestBestMatch(t *testing.T) {
	m := NewMatcher([]string{"house", "mouse", "horse"})

	match, score, ok := m.BestMatch("housee")
	if !ok {
		t.Fatalf("BestMatch() ok = false, want true")
	}
	if match != "house" {
		t.Fatalf("BestMatch(housee) = %q, want house", match)
	}
	// 200*5/11 rounds to 91.
	if score != 91 {
		t.Fatalf("BestMatch(housee) score = %d, want 91", score)
	}
}

func TestBestMatchTiePrefersEarlier(t *testing.T) {
	m := NewMatcher([]string{"cab", "abc"})
	match, _, ok := m.BestMatch("ab")
	if !ok || match != "cab" {
		t.Fatalf("BestMatch(ab) = %q, %v; want cab (earlier entry wins ties)", match, ok)
	}
}

func TestBestMatchEmptyVocabulary(t *testing.T) {
	m := NewMatcher(nil)
	if _, _, ok := m.BestMatch("word"); ok {
		t.Fatalf("BestMatch() on empty vocabulary should report ok = false")
	}
}

func TestNewMatcherNormalizes(t *testing.T) {
	m := NewMatcher([]string{"House", "house", " HOUSE ", "", "mouse"})
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 after dedup", m.Len())
	}
	words := m.Words()
	if words[0] != "house" || words[1] != "mouse" {
		t.Fatalf("Words() = %v, want [house mouse]", words)
	}
}

func TestDefaultVocabulary(t *testing.T) {
	m := Default()
	if m.Len() < 150 {
		t.Fatalf("default vocabulary unexpectedly small: %d entries", m.Len())
	}
	match, score, ok := m.BestMatch("house")
	if !ok || match != "house" || score != 100 {
		t.Fatalf("BestMatch(house) = %q, %d, %v; want exact hit", match, score, ok)
	}
}
