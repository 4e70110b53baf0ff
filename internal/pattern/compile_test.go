package pattern

import "testing"

func TestCompile_SortsByNameWithinCategory(t *testing.T) {
	f := File{Patterns: map[string][]Source{
		"pii": {
			{Name: "zebra", Regex: `z`, Severity: "low"},
			{Name: "alpha", Regex: `a`, Severity: "low"},
		},
	}}
	snap, err := compile(f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ps := snap.ByCategory["pii"]
	if len(ps) != 2 || ps[0].Name != "alpha" || ps[1].Name != "zebra" {
		t.Errorf("expected sorted [alpha zebra], got %v", ps)
	}
}

func TestCompile_DuplicateNameRejected(t *testing.T) {
	f := File{Patterns: map[string][]Source{
		"pii": {
			{Name: "dup", Regex: `a`, Severity: "low"},
			{Name: "dup", Regex: `b`, Severity: "low"},
		},
	}}
	if _, err := compile(f); err == nil {
		t.Error("expected error for duplicate pattern name")
	}
}

func TestCompile_BadRegexRejected(t *testing.T) {
	f := File{Patterns: map[string][]Source{
		"pii": {{Name: "broken", Regex: `(unclosed`, Severity: "low"}},
	}}
	if _, err := compile(f); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestCompile_UnknownValidatorRejected(t *testing.T) {
	f := File{Patterns: map[string][]Source{
		"pii": {{Name: "x", Regex: `a`, Severity: "low", Validator: "not_a_real_validator"}},
	}}
	if _, err := compile(f); err == nil {
		t.Error("expected error for unknown validator")
	}
}

func TestCompile_SeverityAndValidatorWired(t *testing.T) {
	f := File{Patterns: map[string][]Source{
		"pii": {{Name: "card", Regex: `\d+`, Severity: "high", Validator: "luhn"}},
	}}
	snap, err := compile(f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	p := snap.All[0]
	if p.Severity.String() != "high" {
		t.Errorf("expected severity high, got %v", p.Severity)
	}
	if p.Validator == nil || p.Validator.Name() != "luhn" {
		t.Error("expected luhn validator wired")
	}
}

func TestDefaultCatalog_Compiles(t *testing.T) {
	snap := DefaultCatalog()
	if len(snap.All) == 0 {
		t.Fatal("expected non-empty default catalog")
	}
	seen := make(map[string]bool)
	for _, p := range snap.All {
		if seen[p.Name] {
			t.Errorf("duplicate pattern name in default catalog: %s", p.Name)
		}
		seen[p.Name] = true
	}
}
