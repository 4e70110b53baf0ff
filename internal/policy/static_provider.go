package policy

import "github.com/sentrygate/promptwall/internal/firewall"

// StaticProvider serves a fixed, in-memory policy set — used by tests and
// anywhere a config-less default deployment is acceptable.
type StaticProvider struct {
	policies map[string]firewall.Policy
}

// NewStaticProvider wraps policies as a Provider. Reload is a no-op.
func NewStaticProvider(policies map[string]firewall.Policy) *StaticProvider {
	return &StaticProvider{policies: policies}
}

func (sp *StaticProvider) Policy(policyID string) (firewall.Policy, bool) {
	p, ok := sp.policies[policyID]
	return p, ok
}

func (sp *StaticProvider) Reload() error { return nil }
