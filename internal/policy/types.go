// Package policy implements PolicyProvider (YAML and Postgres-backed) and
// the PolicyEngine that turns a FindingSet into a Verdict.
package policy

import "github.com/sentrygate/promptwall/internal/firewall"

// Source is the YAML/JSON wire form of a firewall.Policy. Severity, action,
// and finding-type fields are strings so they round-trip through both a
// config file and a Postgres JSONB column with the same struct.
type Source struct {
	PolicyID          string       `yaml:"policy_id" json:"policy_id"`
	Version           int64        `yaml:"version" json:"version"`
	Enabled           bool         `yaml:"enabled" json:"enabled"`
	SemanticThreshold float64      `yaml:"semantic_threshold" json:"semantic_threshold"`
	DefaultAction     string       `yaml:"default_action" json:"default_action"`
	Rules             []RuleSource `yaml:"rules" json:"rules"`
	Allowlist         ListSource   `yaml:"allowlist" json:"allowlist"`
	Denylist          ListSource   `yaml:"denylist" json:"denylist"`
}

// RuleSource is one Source rule entry.
type RuleSource struct {
	Name        string   `yaml:"name" json:"name"`
	Enabled     bool     `yaml:"enabled" json:"enabled"`
	Categories  []string `yaml:"categories,omitempty" json:"categories,omitempty"`
	MinSeverity string   `yaml:"min_severity,omitempty" json:"min_severity,omitempty"`
	Types       []string `yaml:"types,omitempty" json:"types,omitempty"`
	Action      string   `yaml:"action" json:"action"`
}

// ListSource is one allowlist/denylist entry.
type ListSource struct {
	Keywords []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Phrases  []string `yaml:"phrases,omitempty" json:"phrases,omitempty"`
	Patterns []string `yaml:"patterns,omitempty" json:"patterns,omitempty"`
}

// File is the top-level shape of a policy YAML file: one or more named
// policies keyed by policy_id, mirroring pattern.File's category-keyed shape.
type File struct {
	Policies []Source `yaml:"policies"`
}

// Provider resolves a policy by ID and supports hot reload, the same
// contract shape as pattern.Provider.
type Provider interface {
	Policy(policyID string) (firewall.Policy, bool)
	Reload() error
}
