package detectors

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sentrygate/promptwall/internal/firewall"
	"github.com/sentrygate/promptwall/internal/pattern"
)

// DefaultMaxFindings is the aggregate finding cap that bounds RegexDetector
// work on pathological inputs.
const DefaultMaxFindings = 64

// contextWindow is the ±N character radius a context_terms pattern must
// find one of its terms within.
const contextWindow = 64

// RegexDetector scans a prompt against every enabled pattern in the
// PatternProvider's current snapshot.
type RegexDetector struct {
	Patterns    pattern.Provider
	MaxFindings int
}

// NewRegexDetector constructs a RegexDetector with the default finding
// cap.
func NewRegexDetector(patterns pattern.Provider) *RegexDetector {
	return &RegexDetector{Patterns: patterns, MaxFindings: DefaultMaxFindings}
}

func (d *RegexDetector) Name() string { return "regex" }

type candidate struct {
	pattern *pattern.Pattern
	span    firewall.Span
}

func (d *RegexDetector) Detect(ctx context.Context, p firewall.Prompt, _ firewall.Policy) ([]firewall.Finding, bool, error) {
	snap := d.Patterns.Snapshot()
	text := p.Text

	max := d.MaxFindings
	if max <= 0 {
		max = DefaultMaxFindings
	}

	var candidates []candidate
	for _, pat := range snap.All {
		if ctx.Err() != nil {
			break
		}
		locs := pat.Regex.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			start, end := loc[0], loc[1]
			match := text[start:end]

			if pat.Validator != nil && !pat.Validator.Validate(match) {
				continue
			}
			if len(pat.ContextTerms) > 0 && !hasContextTerm(text, start, end, pat.ContextTerms) {
				continue
			}
			candidates = append(candidates, candidate{pattern: pat, span: firewall.Span{Start: start, End: end}})
		}
	}

	findings := resolveOverlaps(candidates)

	if len(findings) > max {
		// Deterministic truncation: keep by the same ordering the pipeline
		// will later sort with, so truncation doesn't depend on map/regexp
		// iteration order.
		firewall.SortFindings(findings)
		findings = findings[:max]
	}

	return findings, false, nil
}

// hasContextTerm reports whether any of terms occurs case-insensitively
// within contextWindow characters of [start, end) in text.
func hasContextTerm(text string, start, end int, terms []string) bool {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	window := strings.ToLower(text[lo:hi])
	for _, term := range terms {
		if strings.Contains(window, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// resolveOverlaps applies the overlap policy: different
// categories matching overlapping spans are both kept; within the same
// category, identical spans are resolved by highest severity, ties broken
// by pattern name ascending.
func resolveOverlaps(candidates []candidate) []firewall.Finding {
	type key struct {
		category string
		start    int
		end      int
	}
	best := make(map[key]candidate)
	order := make([]key, 0, len(candidates))

	for _, c := range candidates {
		k := key{c.pattern.Category, c.span.Start, c.span.End}
		cur, ok := best[k]
		if !ok {
			best[k] = c
			order = append(order, k)
			continue
		}
		if c.pattern.Severity > cur.pattern.Severity ||
			(c.pattern.Severity == cur.pattern.Severity && c.pattern.Name < cur.pattern.Name) {
			best[k] = c
		}
	}

	findings := make([]firewall.Finding, 0, len(order))
	for _, k := range order {
		c := best[k]
		findings = append(findings, firewall.Finding{
			ID:          uuid.NewString(),
			Type:        firewall.FindingRegex,
			PatternName: c.pattern.Name,
			Category:    c.pattern.Category,
			Severity:    c.pattern.Severity,
			Confidence:  1.0,
			MatchSpans:  []firewall.Span{c.span},
		})
	}
	return findings
}
