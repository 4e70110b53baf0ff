package policy

import (
	"regexp"
	"strings"

	"github.com/sentrygate/promptwall/internal/firewall"
)

// ListMatch reports which allowlist/denylist entry matched, for the
// observability finding/message the pipeline attaches to a short-circuited
// verdict.
type ListMatch struct {
	Matched bool
	Kind    string // "keyword", "phrase", or "pattern"
	Value   string
}

// CheckList reports whether text matches any keyword, phrase, or regex
// pattern in list. Keywords and phrases match case-insensitively as
// substrings; patterns are raw regex source compiled on the spot (list
// checks run once per request, before the detector fan-out, so this cost
// is bounded and avoids keeping a second long-lived compiled-pattern cache
// alongside pattern.Provider's).
func CheckList(text string, list firewall.ListEntry) ListMatch {
	lower := strings.ToLower(text)

	for _, kw := range list.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return ListMatch{Matched: true, Kind: "keyword", Value: kw}
		}
	}
	for _, ph := range list.Phrases {
		if ph == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(ph)) {
			return ListMatch{Matched: true, Kind: "phrase", Value: ph}
		}
	}
	for _, src := range list.Patterns {
		re, err := regexp.Compile(src)
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			return ListMatch{Matched: true, Kind: "pattern", Value: src}
		}
	}
	return ListMatch{}
}
