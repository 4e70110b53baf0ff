package policy

import "github.com/sentrygate/promptwall/internal/firewall"

func compileSource(src Source) firewall.Policy {
	rules := make([]firewall.Rule, 0, len(src.Rules))
	for i, r := range src.Rules {
		rules = append(rules, firewall.Rule{
			Name:        r.Name,
			Enabled:     r.Enabled,
			Categories:  r.Categories,
			MinSeverity: firewall.ParseSeverity(r.MinSeverity),
			Types:       parseTypes(r.Types),
			Action:      parseAction(r.Action),
			Index:       i,
		})
	}

	threshold := src.SemanticThreshold
	if threshold <= 0 {
		threshold = 0.85
	}

	return firewall.Policy{
		PolicyID:          src.PolicyID,
		Version:           src.Version,
		Enabled:           src.Enabled,
		Rules:             rules,
		SemanticThreshold: threshold,
		DefaultAction:     parseAction(src.DefaultAction),
		Allowlist:         firewall.ListEntry(src.Allowlist),
		Denylist:          firewall.ListEntry(src.Denylist),
	}
}

func parseAction(s string) firewall.Action {
	switch s {
	case "allow":
		return firewall.ActionAllow
	case "warn":
		return firewall.ActionWarn
	case "block":
		return firewall.ActionBlock
	case "log":
		return firewall.ActionLog
	default:
		return firewall.ActionAllow
	}
}

func parseTypes(ss []string) []firewall.FindingType {
	if len(ss) == 0 {
		return nil
	}
	out := make([]firewall.FindingType, 0, len(ss))
	for _, s := range ss {
		switch s {
		case "regex":
			out = append(out, firewall.FindingRegex)
		case "semantic":
			out = append(out, firewall.FindingSemantic)
		case "policy":
			out = append(out, firewall.FindingPolicy)
		case "contextual":
			out = append(out, firewall.FindingContextual)
		}
	}
	return out
}
