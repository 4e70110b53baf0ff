// Package cache implements the two-tier ResultCache: a process-local
// bounded LRU (L1) in front of a shared Redis tier (L2), keyed by prompt
// fingerprint. Only safe results — allowed, with no findings — are ever
// stored, so a policy or pattern change can never be masked by a stale
// cached verdict.
package cache

import (
	"context"
	"time"

	"github.com/sentrygate/promptwall/internal/firewall"
)

// Default sizing, overridable via CACHE_L1_SIZE / CACHE_TTL_L1 /
// CACHE_TTL_L2.
const (
	DefaultL1Size = 1000
	DefaultL1TTL  = 300 * time.Second
	DefaultL2TTL  = 3600 * time.Second
)

// Entry is the cached form of a ValidationResult: everything except the
// per-call latency and timestamp, plus the policy version observed at
// insertion so reads can detect reload-plus-collision staleness.
type Entry struct {
	RequestID     string `json:"request_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	PolicyID      string `json:"policy_id"`
	PolicyVersion int64  `json:"policy_version"`
}

// ResultCache is the pipeline-facing contract. Get returns the entry only
// if it is present, unexpired, and was stored under policyVersion; any
// backend error downgrades to a miss. Put enforces the safety invariant
// itself — unsafe results are dropped no matter what the caller sends.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string, policyVersion int64) (Entry, bool)
	Put(ctx context.Context, res firewall.ValidationResult)
	Stats() Stats
}

// Stats holds the hit/miss counters tracked per tier. Error counts fold
// read and write failures together; per the failure semantics those only
// ever cost a cache miss, never a request.
type Stats struct {
	L1Hits   uint64
	L1Misses uint64
	L2Hits   uint64
	L2Misses uint64
	Errors   uint64
}

// Cacheable reports whether res satisfies the safety invariant: an allowed
// verdict with no findings, produced by a full (neither truncated nor
// degraded) detector pass. A degraded allow only means "nothing found by
// the detectors that ran", which must not outlive the request.
func Cacheable(res firewall.ValidationResult) bool {
	return res.Verdict.Status == firewall.StatusAllowed &&
		len(res.Verdict.Findings) == 0 &&
		!res.Truncated &&
		len(res.DegradedDetectors) == 0
}
