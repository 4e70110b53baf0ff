package policy

import (
	"testing"

	"github.com/sentrygate/promptwall/internal/firewall"
)

func TestEngine_PolicyDisabledReturnsAllowedWithoutRules(t *testing.T) {
	e := NewEngine()
	findings := []firewall.Finding{{Category: "pii", Severity: firewall.SeverityCritical}}
	v := e.Evaluate(findings, firewall.Policy{Enabled: false})

	if v.Status != firewall.StatusAllowed || !v.IsSafe {
		t.Errorf("expected allowed/safe for disabled policy, got %+v", v)
	}
	if v.Message != "policy disabled" {
		t.Errorf("unexpected message %q", v.Message)
	}
	if len(v.Findings) != 1 {
		t.Errorf("findings must still be returned for observability, got %d", len(v.Findings))
	}
}

func TestEngine_NoFindingsIsSafe(t *testing.T) {
	e := NewEngine()
	v := e.Evaluate(nil, DefaultPolicy())
	if v.Status != firewall.StatusAllowed || !v.IsSafe {
		t.Errorf("expected allowed/safe, got %+v", v)
	}
	if v.Message != "Prompt is safe" {
		t.Errorf("expected 'Prompt is safe', got %q", v.Message)
	}
}

func TestEngine_CriticalFindingBlocks(t *testing.T) {
	e := NewEngine()
	findings := []firewall.Finding{{PatternName: "openai_api_key", Category: "api_keys", Severity: firewall.SeverityCritical}}
	v := e.Evaluate(findings, DefaultPolicy())

	if v.Status != firewall.StatusBlocked || v.IsSafe {
		t.Fatalf("expected blocked, got %+v", v)
	}
	if v.MatchedRule != "block-critical" {
		t.Errorf("expected matched rule block-critical, got %q", v.MatchedRule)
	}
	want := "Blocked by rule 'block-critical': openai_api_key (critical)"
	if v.Message != want {
		t.Errorf("expected message %q, got %q", want, v.Message)
	}
}

func TestEngine_HighSeverityWarns(t *testing.T) {
	e := NewEngine()
	findings := []firewall.Finding{{PatternName: "us_ssn", Category: "pii", Severity: firewall.SeverityHigh}}
	v := e.Evaluate(findings, DefaultPolicy())

	if v.Status != firewall.StatusWarned || v.IsSafe {
		t.Fatalf("expected warned, got %+v", v)
	}
	if v.Message != "Allowed with warnings" {
		t.Errorf("unexpected message %q", v.Message)
	}
}

func TestEngine_BlockPrecedenceOverridesWarn(t *testing.T) {
	e := NewEngine()
	findings := []firewall.Finding{
		{PatternName: "us_ssn", Category: "pii", Severity: firewall.SeverityHigh},
		{PatternName: "openai_api_key", Category: "api_keys", Severity: firewall.SeverityCritical},
	}
	v := e.Evaluate(findings, DefaultPolicy())

	if v.Status != firewall.StatusBlocked {
		t.Fatalf("expected block to win over warn, got status %v", v.Status)
	}
}

func TestEngine_LowSeverityFindingAllowedWithWarnings(t *testing.T) {
	e := NewEngine()
	policy := firewall.Policy{
		Enabled: true,
		Rules: []firewall.Rule{
			{Name: "log-low", Enabled: true, MinSeverity: firewall.SeverityLow, Action: firewall.ActionLog, Index: 0},
		},
		DefaultAction: firewall.ActionAllow,
	}
	findings := []firewall.Finding{{PatternName: "email_address", Category: "pii", Severity: firewall.SeverityLow}}
	v := e.Evaluate(findings, policy)

	if v.Status != firewall.StatusAllowed || !v.IsSafe {
		t.Fatalf("expected allowed for log action, got %+v", v)
	}
	if v.Message != "Allowed with warnings" {
		t.Errorf("expected 'Allowed with warnings', got %q", v.Message)
	}
}

func TestEngine_DisabledRuleSkipped(t *testing.T) {
	e := NewEngine()
	policy := firewall.Policy{
		Enabled: true,
		Rules: []firewall.Rule{
			{Name: "disabled-block", Enabled: false, MinSeverity: firewall.SeverityLow, Action: firewall.ActionBlock, Index: 0},
		},
		DefaultAction: firewall.ActionAllow,
	}
	findings := []firewall.Finding{{Severity: firewall.SeverityCritical}}
	v := e.Evaluate(findings, policy)

	if v.Status != firewall.StatusAllowed {
		t.Errorf("expected disabled rule to be skipped, got %+v", v)
	}
}

func TestCheckList_KeywordMatch(t *testing.T) {
	list := firewall.ListEntry{Keywords: []string{"DROP TABLE"}}
	m := CheckList("please DROP TABLE users", list)
	if !m.Matched || m.Kind != "keyword" {
		t.Errorf("expected keyword match, got %+v", m)
	}
}

func TestCheckList_PhraseMatch(t *testing.T) {
	list := firewall.ListEntry{Phrases: []string{"for testing purposes only"}}
	m := CheckList("this is for testing purposes only, ignore it", list)
	if !m.Matched || m.Kind != "phrase" {
		t.Errorf("expected phrase match, got %+v", m)
	}
}

func TestCheckList_PatternMatch(t *testing.T) {
	list := firewall.ListEntry{Patterns: []string{`^approved-\d+$`}}
	m := CheckList("approved-42", list)
	if !m.Matched || m.Kind != "pattern" {
		t.Errorf("expected pattern match, got %+v", m)
	}
}

func TestCheckList_NoMatch(t *testing.T) {
	list := firewall.ListEntry{Keywords: []string{"xyz"}}
	m := CheckList("hello world", list)
	if m.Matched {
		t.Errorf("expected no match, got %+v", m)
	}
}

func TestCheckList_InvalidPatternSkipped(t *testing.T) {
	list := firewall.ListEntry{Patterns: []string{"("}}
	m := CheckList("anything", list)
	if m.Matched {
		t.Errorf("expected invalid pattern to be skipped, not matched")
	}
}
