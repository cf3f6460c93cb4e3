package correct

import "testing"

func TestSummarize(t *testing.T) {
	res := &Result{
		Corrections: []Record{
			{Method: MethodSpell},
			{Method: MethodFuzzy},
			{Method: MethodSpell},
		},
	}
	stats := Summarize(res)
	if stats.TotalCorrections != 3 {
		t.Errorf("total = %d, want 3", stats.TotalCorrections)
	}
	if stats.MethodsUsed != 2 {
		t.Errorf("methods used = %d, want 2", stats.MethodsUsed)
	}
	if stats.MethodCounts[string(MethodSpell)] != 2 || stats.MethodCounts[string(MethodFuzzy)] != 1 {
		t.Errorf("counts = %v", stats.MethodCounts)
	}
	if stats.MostUsedMethod != string(MethodSpell) {
		t.Errorf("most used = %q, want %q", stats.MostUsedMethod, MethodSpell)
	}
}

func TestSummarizeTieBreaksByFirstUse(t *testing.T) {
	res := &Result{
		Corrections: []Record{
			{Method: MethodFuzzy},
			{Method: MethodSpell},
		},
	}
	stats := Summarize(res)
	if stats.MostUsedMethod != string(MethodFuzzy) {
		t.Errorf("most used = %q, want %q", stats.MostUsedMethod, MethodFuzzy)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	stats := Summarize(nil)
	if stats.TotalCorrections != 0 || stats.MethodsUsed != 0 || stats.MostUsedMethod != "" {
		t.Errorf("stats = %+v, want zero values", stats)
	}
	if stats.MethodCounts == nil {
		t.Error("method counts map should not be nil")
	}

	stats = Summarize(&Result{})
	if stats.TotalCorrections != 0 || stats.MostUsedMethod != "" {
		t.Errorf("stats = %+v, want zero values", stats)
	}
}
