package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sentrygate/promptwall/internal/firewall"
)

// Tiered composes L1 and an optional Shared L2. Reads check L1 first, then
// L2, promoting L2 hits into L1; writes populate both. Every backend
// failure downgrades to a miss and bumps the error counter — the pipeline
// never sees a cache error.
type Tiered struct {
	l1     *L1
	l2     Shared // nil when no shared tier is configured
	l2TTL  time.Duration
	logger *zap.Logger

	l1Hits   atomic.Uint64
	l1Misses atomic.Uint64
	l2Hits   atomic.Uint64
	l2Misses atomic.Uint64
	errors   atomic.Uint64
}

// NewTiered builds the two-tier cache. l2 may be nil for an L1-only
// deployment (tests, single-instance dev).
func NewTiered(l1 *L1, l2 Shared, l2TTL time.Duration, logger *zap.Logger) *Tiered {
	if l1 == nil {
		l1 = NewL1(DefaultL1Size, DefaultL1TTL)
	}
	if l2TTL <= 0 {
		l2TTL = DefaultL2TTL
	}
	return &Tiered{l1: l1, l2: l2, l2TTL: l2TTL, logger: logger}
}

// Get looks up fingerprint across both tiers. An entry stored under a
// different policy version is stale — treated as a miss and lazily
// deleted, defending against a reload racing a fingerprint collision.
func (t *Tiered) Get(ctx context.Context, fingerprint string, policyVersion int64) (Entry, bool) {
	if entry, ok := t.l1.Get(fingerprint); ok {
		if entry.PolicyVersion != policyVersion {
			t.l1.Delete(fingerprint)
			t.l1Misses.Add(1)
			return Entry{}, false
		}
		t.l1Hits.Add(1)
		return entry, true
	}
	t.l1Misses.Add(1)

	if t.l2 == nil {
		return Entry{}, false
	}

	entry, err := t.l2.Get(ctx, fingerprint)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			t.errors.Add(1)
			t.logger.Warn("cache: shared tier read failed, treating as miss", zap.Error(err))
		}
		t.l2Misses.Add(1)
		return Entry{}, false
	}
	if entry.PolicyVersion != policyVersion {
		t.l2Misses.Add(1)
		if err := t.l2.Delete(ctx, fingerprint); err != nil {
			t.errors.Add(1)
		}
		return Entry{}, false
	}

	t.l2Hits.Add(1)
	t.l1.Set(fingerprint, entry)
	return entry, true
}

// Put stores res in both tiers, best effort. Results failing the safety
// invariant are dropped here regardless of what the pipeline asked for:
// caching a blocked, warned, degraded, or findings-bearing verdict could
// mask later policy or pattern changes.
func (t *Tiered) Put(ctx context.Context, res firewall.ValidationResult) {
	if !Cacheable(res) {
		return
	}

	entry := Entry{
		RequestID:     res.RequestID,
		Status:        res.Verdict.Status.String(),
		Message:       res.Verdict.Message,
		PolicyID:      res.PolicyID,
		PolicyVersion: res.PolicyVersion,
	}

	t.l1.Set(res.PromptFingerprint, entry)

	if t.l2 == nil {
		return
	}
	if err := t.l2.Set(ctx, res.PromptFingerprint, entry, t.l2TTL); err != nil {
		t.errors.Add(1)
		t.logger.Warn("cache: shared tier write failed", zap.Error(err))
	}
}

// Stats returns a snapshot of the hit/miss/error counters.
func (t *Tiered) Stats() Stats {
	return Stats{
		L1Hits:   t.l1Hits.Load(),
		L1Misses: t.l1Misses.Load(),
		L2Hits:   t.l2Hits.Load(),
		L2Misses: t.l2Misses.Load(),
		Errors:   t.errors.Load(),
	}
}
