package pattern

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/sentrygate/promptwall/internal/firewall"
)

// compile turns a File (as parsed from YAML) into a Snapshot. A malformed
// pattern — bad regex, unknown validator name — is fatal: the whole load is
// rejected rather than silently dropping one entry.
func compile(f File) (*Snapshot, error) {
	snap := &Snapshot{ByCategory: make(map[string][]*Pattern)}

	for category, sources := range f.Patterns {
		names := make(map[string]bool, len(sources))
		for _, src := range sources {
			if src.Name == "" {
				return nil, fmt.Errorf("compile: category %q: pattern missing name", category)
			}
			if names[src.Name] {
				return nil, fmt.Errorf("compile: category %q: duplicate pattern name %q", category, src.Name)
			}
			names[src.Name] = true

			re, err := regexp.Compile(src.Regex)
			if err != nil {
				return nil, fmt.Errorf("compile: pattern %q: %w", src.Name, err)
			}

			v, ok := byName(src.Validator)
			if !ok {
				return nil, fmt.Errorf("compile: pattern %q: unknown validator %q", src.Name, src.Validator)
			}

			p := &Pattern{
				Name:         src.Name,
				Category:     category,
				Regex:        re,
				Severity:     firewall.ParseSeverity(src.Severity),
				Validator:    v,
				ContextTerms: src.ContextTerms,
				Description:  src.Description,
			}
			snap.ByCategory[category] = append(snap.ByCategory[category], p)
			snap.All = append(snap.All, p)
		}
	}

	// Deterministic ordering (name ascending within category) so the
	// RegexDetector's same-category tie-break is reproducible independent
	// of map iteration order.
	for _, ps := range snap.ByCategory {
		sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
	}
	sort.Slice(snap.All, func(i, j int) bool { return snap.All[i].Name < snap.All[j].Name })

	return snap, nil
}
