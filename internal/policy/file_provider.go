package policy

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/sentrygate/promptwall/internal/firewall"
)

// FileProvider loads policies from a YAML file, the same load-with-
// fallback-and-atomic-swap shape as pattern.FileProvider.
type FileProvider struct {
	path     string
	policies atomic.Pointer[map[string]firewall.Policy]
}

// NewFileProvider loads path once and returns a ready Provider. A missing
// file is not an error: it falls back to DefaultPolicy.
func NewFileProvider(path string) (*FileProvider, error) {
	fp := &FileProvider{path: path}
	if err := fp.Reload(); err != nil {
		return nil, err
	}
	return fp, nil
}

func (fp *FileProvider) Policy(policyID string) (firewall.Policy, bool) {
	m := fp.policies.Load()
	if m == nil {
		return firewall.Policy{}, false
	}
	p, ok := (*m)[policyID]
	return p, ok
}

// Reload re-reads the backing file. A failed reload leaves the previously
// published snapshot in place, mirroring pattern.FileProvider.Reload.
func (fp *FileProvider) Reload() error {
	data, err := os.ReadFile(fp.path)
	if err != nil {
		if os.IsNotExist(err) {
			m := map[string]firewall.Policy{"default": DefaultPolicy()}
			fp.policies.Store(&m)
			return nil
		}
		return fmt.Errorf("policy.FileProvider.Reload: read %s: %w", fp.path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return firewall.NewError("policy.FileProvider.Reload", firewall.ErrPolicyMalformed, err)
	}

	m := make(map[string]firewall.Policy, len(file.Policies))
	for _, src := range file.Policies {
		if src.PolicyID == "" {
			return firewall.NewError("policy.FileProvider.Reload", firewall.ErrPolicyMalformed,
				fmt.Errorf("%s: policy missing policy_id", fp.path))
		}
		m[src.PolicyID] = compileSource(src)
	}
	if _, ok := m["default"]; !ok {
		m["default"] = DefaultPolicy()
	}

	fp.policies.Store(&m)
	return nil
}

// DefaultPolicy is used when no policy file is present and as the fallback
// for the "default" policy ID when a loaded file doesn't define one.
func DefaultPolicy() firewall.Policy {
	return firewall.Policy{
		PolicyID: "default",
		Version:  1,
		Enabled:  true,
		Rules: []firewall.Rule{
			{Name: "block-critical", Enabled: true, MinSeverity: firewall.SeverityCritical, Action: firewall.ActionBlock, Index: 0},
			{Name: "warn-high", Enabled: true, MinSeverity: firewall.SeverityHigh, Action: firewall.ActionWarn, Index: 1},
			{Name: "log-medium", Enabled: true, MinSeverity: firewall.SeverityMedium, Action: firewall.ActionLog, Index: 2},
		},
		SemanticThreshold: 0.85,
		DefaultAction:     firewall.ActionAllow,
	}
}
