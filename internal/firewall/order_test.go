package firewall

import "testing"

func TestSortFindings(t *testing.T) {
	findings := []Finding{
		{PatternName: "b_pattern", Type: FindingRegex, Severity: SeverityLow, MatchSpans: []Span{{Start: 5, End: 9}}},
		{PatternName: "a_pattern", Type: FindingSemantic, Severity: SeverityCritical, MatchSpans: []Span{{Start: 0, End: 4}}},
		{PatternName: "a_pattern", Type: FindingRegex, Severity: SeverityCritical, MatchSpans: []Span{{Start: 9, End: 12}}},
		{PatternName: "a_pattern", Type: FindingRegex, Severity: SeverityCritical, MatchSpans: []Span{{Start: 2, End: 6}}},
	}
	SortFindings(findings)

	// Severity desc first, then type asc (regex before semantic), then
	// pattern name asc, then span start asc.
	wantStarts := []int{2, 9, 0, 5}
	for i, want := range wantStarts {
		if findings[i].MatchSpans[0].Start != want {
			t.Fatalf("findings[%d] span start = %d, want %d (%+v)", i, findings[i].MatchSpans[0].Start, want, findings)
		}
	}
}

func TestDedupeFindings(t *testing.T) {
	span := []Span{{Start: 3, End: 8}}
	findings := []Finding{
		{ID: "1", Type: FindingRegex, PatternName: "us_ssn", MatchSpans: span},
		{ID: "2", Type: FindingRegex, PatternName: "us_ssn", MatchSpans: span},
		{ID: "3", Type: FindingSemantic, PatternName: "us_ssn", MatchSpans: span},
		{ID: "4", Type: FindingRegex, PatternName: "us_ssn", MatchSpans: []Span{{Start: 10, End: 15}}},
	}
	out := DedupeFindings(findings)
	if len(out) != 3 {
		t.Fatalf("got %d findings, want 3", len(out))
	}
	if out[0].ID != "1" {
		t.Error("dedupe must keep the first occurrence")
	}
}
