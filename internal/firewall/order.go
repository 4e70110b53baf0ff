package firewall

import "sort"

// SortFindings orders findings deterministically: severity desc, type
// asc, pattern_name asc, match_span start asc. Both the
// RegexDetector (for truncation) and the pipeline (for the final merged
// set) sort with this so verdict messages and tests stay stable regardless
// of detector completion order.
func SortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.PatternName != b.PatternName {
			return a.PatternName < b.PatternName
		}
		aStart, bStart := -1, -1
		if len(a.MatchSpans) > 0 {
			aStart = a.MatchSpans[0].Start
		}
		if len(b.MatchSpans) > 0 {
			bStart = b.MatchSpans[0].Start
		}
		return aStart < bStart
	})
}

// DedupeFindings merges findings that share a (type, pattern_name,
// match_span) key, keeping the first occurrence.
func DedupeFindings(findings []Finding) []Finding {
	seen := make(map[string]bool, len(findings))
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		k := f.dedupeKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	return out
}
