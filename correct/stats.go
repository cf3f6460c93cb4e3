package correct

// Stats aggregates the corrections of a run per method.
type Stats struct {
	TotalCorrections int            `json:"total_corrections"`
	MethodsUsed      int            `json:"methods_used"`
	MethodCounts     map[string]int `json:"correction_breakdown"`
	MostUsedMethod   string         `json:"most_used_method,omitempty"`
}

// Summarize computes per-method statistics for a result. Ties for the most
// used method resolve to the method that produced a record first. A nil
// result yields zero stats.
func Summarize(result *Result) Stats {
	stats := Stats{MethodCounts: map[string]int{}}
	if result == nil {
		return stats
	}
	stats.TotalCorrections = len(result.Corrections)

	var order []string
	for _, r := range result.Corrections {
		method := string(r.Method)
		if _, ok := stats.MethodCounts[method]; !ok {
			order = append(order, method)
		}
		stats.MethodCounts[method]++
	}
	stats.MethodsUsed = len(order)

	best := 0
	for _, method := range order {
		if n := stats.MethodCounts[method]; n > best {
			best = n
			stats.MostUsedMethod = method
		}
	}
	return stats
}
