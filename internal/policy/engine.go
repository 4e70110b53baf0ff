package policy

import (
	"fmt"

	"github.com/sentrygate/promptwall/internal/firewall"
)

// Engine produces a Verdict from a finding set under a Policy: ordered
// rules, precedence-ranked actions.
type Engine struct{}

// NewEngine returns a stateless PolicyEngine; all inputs come through
// Evaluate's arguments.
func NewEngine() *Engine { return &Engine{} }

// Evaluate walks policy.Rules in order, tracking the highest-precedence
// action among all matching rules (block > warn > log > allow), and maps
// the winner to a Verdict. Findings are always returned on the verdict,
// even when the policy is disabled or the winning action is "log".
func (e *Engine) Evaluate(findings []firewall.Finding, policy firewall.Policy) firewall.Verdict {
	if !policy.Enabled {
		return firewall.Verdict{
			Status:   firewall.StatusAllowed,
			IsSafe:   true,
			Message:  "policy disabled",
			Findings: findings,
		}
	}

	var (
		winningAction firewall.Action
		winningRule   string
		winningFind   firewall.Finding
		matched       bool
	)
	winningAction = policy.DefaultAction

	for _, rule := range policy.Rules {
		if !rule.Enabled {
			continue
		}
		for _, f := range findings {
			if !rule.Matches(f) {
				continue
			}
			if !matched || rule.Action.precedence() > winningAction.precedence() {
				matched = true
				winningAction = rule.Action
				winningRule = rule.Name
				winningFind = f
			}
			break
		}
	}

	return e.toVerdict(winningAction, winningRule, winningFind, matched, findings)
}

func (e *Engine) toVerdict(action firewall.Action, ruleName string, f firewall.Finding, matched bool, findings []firewall.Finding) firewall.Verdict {
	v := firewall.Verdict{Findings: findings}

	switch action {
	case firewall.ActionBlock:
		v.Status = firewall.StatusBlocked
		v.IsSafe = false
		v.MatchedRule = ruleName
		if matched {
			v.Message = fmt.Sprintf("Blocked by rule '%s': %s (%s)", ruleName, f.PatternName, f.Severity)
		} else {
			v.Message = "Blocked by default policy action"
		}
	case firewall.ActionWarn:
		v.Status = firewall.StatusWarned
		v.IsSafe = false
		v.MatchedRule = ruleName
		v.Message = "Allowed with warnings"
	case firewall.ActionLog:
		v.Status = firewall.StatusAllowed
		v.IsSafe = true
		v.MatchedRule = ruleName
		v.Message = "Allowed with warnings"
	default: // allow
		v.Status = firewall.StatusAllowed
		v.IsSafe = true
		if matched {
			v.MatchedRule = ruleName
		}
		if len(findings) == 0 {
			v.Message = "Prompt is safe"
		} else {
			v.Message = "Allowed with warnings"
		}
	}
	return v
}
