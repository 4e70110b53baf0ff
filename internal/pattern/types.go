// Package pattern compiles and serves the deterministic pattern catalog the
// RegexDetector scans prompts with.
package pattern

import (
	"regexp"

	"github.com/sentrygate/promptwall/internal/firewall"
)

// Validator runs additional content-aware checks on a matched substring
// beyond what the regex itself can express (a Luhn checksum, key fencing).
// It returns false to discard the candidate match.
type Validator interface {
	Validate(match string) bool
	Name() string
}

// Pattern is one compiled, named entry in the catalog.
type Pattern struct {
	Name         string
	Category     string
	Regex        *regexp.Regexp
	Severity     firewall.Severity
	Validator    Validator // nil if none
	ContextTerms []string  // empty means no context window requirement
	Description  string
}

// Source is the on-disk/YAML representation a PatternProvider parses before
// compiling into a Pattern. Exported so adapters (file, embedded) share one
// parsing path.
type Source struct {
	Name         string   `yaml:"name"`
	Regex        string   `yaml:"regex"`
	Severity     string   `yaml:"severity"`
	Validator    string   `yaml:"validator,omitempty"`
	ContextTerms []string `yaml:"context_terms,omitempty"`
	Description  string   `yaml:"description,omitempty"`
}

// File is the top-level shape of a pattern YAML file: categories mapping to
// their pattern sources.
type File struct {
	Patterns map[string][]Source `yaml:"patterns"`
}

// Snapshot is an immutable, published view of the compiled catalog. Readers
// that captured a Snapshot at call entry keep observing it even if the
// provider reloads concurrently.
type Snapshot struct {
	ByCategory map[string][]*Pattern
	All        []*Pattern
}

// Provider supplies the compiled, categorized pattern set and supports
// reload-without-restart.
type Provider interface {
	Snapshot() *Snapshot
	Reload() error
}
