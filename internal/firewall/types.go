// Package firewall holds the core data model shared by every component of
// the prompt validation pipeline: prompts in, findings and verdicts out.
package firewall

import (
	"strconv"
	"time"
)

// Severity ranks how dangerous a Finding is, from informational to critical.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the lowercase severity name used in YAML, JSON, and logs.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unspecified"
	}
}

// ParseSeverity parses the YAML/JSON string form of a Severity. Unknown
// strings default to SeverityMedium so a typo in a pattern file degrades
// gracefully instead of panicking at load time.
func ParseSeverity(s string) Severity {
	switch s {
	case "info":
		return SeverityInfo
	case "low":
		return SeverityLow
	case "medium":
		return SeverityMedium
	case "high":
		return SeverityHigh
	case "critical":
		return SeverityCritical
	default:
		return SeverityMedium
	}
}

// FindingType identifies which layer of the pipeline produced a Finding.
type FindingType int

const (
	FindingRegex FindingType = iota
	FindingSemantic
	FindingPolicy
	FindingContextual
)

func (t FindingType) String() string {
	switch t {
	case FindingRegex:
		return "regex"
	case FindingSemantic:
		return "semantic"
	case FindingPolicy:
		return "policy"
	case FindingContextual:
		return "contextual"
	default:
		return "unspecified"
	}
}

// Action is what a matching Rule (or a policy's default) prescribes.
type Action int

const (
	ActionAllow Action = iota
	ActionWarn
	ActionBlock
	ActionLog
)

func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionWarn:
		return "warn"
	case ActionBlock:
		return "block"
	case ActionLog:
		return "log"
	default:
		return "unspecified"
	}
}

// Precedence returns the action's rank in the block > warn > log > allow
// ordering used when multiple rules match.
func (a Action) Precedence() int {
	switch a {
	case ActionBlock:
		return 3
	case ActionWarn:
		return 2
	case ActionLog:
		return 1
	default:
		return 0
	}
}

// Status is the final disposition carried on a ValidationResult.
type Status int

const (
	StatusAllowed Status = iota
	StatusBlocked
	StatusWarned
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusAllowed:
		return "allowed"
	case StatusBlocked:
		return "blocked"
	case StatusWarned:
		return "warned"
	case StatusError:
		return "error"
	default:
		return "unspecified"
	}
}

// Span is a half-open [Start, End) byte offset range into a prompt's text.
type Span struct {
	Start int
	End   int
}

// Prompt is the transient input to Validate. Text is never logged verbatim
// outside the DetectionSink; callers should assume it is sensitive.
type Prompt struct {
	Text     string
	UserID   string
	PolicyID string
	Context  map[string]string
}

// EffectivePolicyID returns PolicyID, defaulting to "default".
func (p Prompt) EffectivePolicyID() string {
	if p.PolicyID == "" {
		return "default"
	}
	return p.PolicyID
}

// Finding is a single piece of evidence that a prompt contains sensitive or
// policy-relevant content.
type Finding struct {
	ID          string
	Type        FindingType
	PatternName string
	Category    string
	Severity    Severity
	Confidence  float64
	MatchSpans  []Span
	Metadata    map[string]string
}

// dedupeKey identifies findings that should be merged as duplicates when
// fanned-out detectors race.
func (f Finding) dedupeKey() string {
	key := f.Type.String() + "|" + f.PatternName + "|"
	if len(f.MatchSpans) > 0 {
		key += spanKey(f.MatchSpans[0])
	}
	return key
}

func spanKey(s Span) string {
	return strconv.Itoa(s.Start) + ":" + strconv.Itoa(s.End)
}

// Rule is one ordered entry in a Policy: a predicate over findings and the
// action to take when it matches.
type Rule struct {
	Name        string
	Enabled     bool
	Categories  []string // empty = match any category
	MinSeverity Severity
	Types       []FindingType // empty = match any type
	Action      Action
	Index       int
}

// Matches reports whether f satisfies the rule's predicate.
func (r Rule) Matches(f Finding) bool {
	if len(r.Categories) > 0 && !containsString(r.Categories, f.Category) {
		return false
	}
	if f.Severity < r.MinSeverity {
		return false
	}
	if len(r.Types) > 0 && !containsType(r.Types, f.Type) {
		return false
	}
	return true
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func containsType(ts []FindingType, t FindingType) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

// ListEntry is a literal allowlist/denylist check (keywords, phrases, raw
// regexes) evaluated before the detector fan-out.
type ListEntry struct {
	Keywords []string
	Phrases  []string
	Patterns []string // raw regex source, compiled by the policy provider
}

// Policy is a versioned, named set of rules governing how findings map to
// a verdict.
type Policy struct {
	PolicyID          string
	Version           int64
	Enabled           bool
	Rules             []Rule
	SemanticThreshold float64
	DefaultAction     Action
	Allowlist         ListEntry
	Denylist          ListEntry
}

// Verdict is the final enforcement decision for one Validate call.
type Verdict struct {
	Status      Status
	IsSafe      bool
	MatchedRule string
	Message     string
	Findings    []Finding
}

// ValidationResult is the full outcome of one Validate call.
type ValidationResult struct {
	RequestID         string
	PromptFingerprint string
	Verdict           Verdict
	PolicyID          string
	PolicyVersion     int64
	Latency           time.Duration
	Cached            bool
	Timestamp         time.Time
	DegradedDetectors []string
	Truncated         bool
}
