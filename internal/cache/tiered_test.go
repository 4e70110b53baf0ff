package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sentrygate/promptwall/internal/firewall"
)

// fakeShared is an in-memory Shared tier with an injectable failure.
type fakeShared struct {
	entries map[string]Entry
	fail    error
	sets    int
	deletes int
}

func newFakeShared() *fakeShared {
	return &fakeShared{entries: make(map[string]Entry)}
}

func (f *fakeShared) Get(_ context.Context, key string) (Entry, error) {
	if f.fail != nil {
		return Entry{}, f.fail
	}
	e, ok := f.entries[key]
	if !ok {
		return Entry{}, ErrMiss
	}
	return e, nil
}

func (f *fakeShared) Set(_ context.Context, key string, entry Entry, _ time.Duration) error {
	if f.fail != nil {
		return f.fail
	}
	f.entries[key] = entry
	f.sets++
	return nil
}

func (f *fakeShared) Delete(_ context.Context, key string) error {
	delete(f.entries, key)
	f.deletes++
	return nil
}

func safeResult(fp string, version int64) firewall.ValidationResult {
	return firewall.ValidationResult{
		RequestID:         "req-1",
		PromptFingerprint: fp,
		PolicyID:          "default",
		PolicyVersion:     version,
		Verdict: firewall.Verdict{
			Status:  firewall.StatusAllowed,
			IsSafe:  true,
			Message: "Prompt is safe",
		},
	}
}

func TestTiered_PutGetRoundTrip(t *testing.T) {
	l2 := newFakeShared()
	c := NewTiered(NewL1(8, time.Minute), l2, time.Hour, zap.NewNop())
	ctx := context.Background()

	c.Put(ctx, safeResult("fp1", 1))

	entry, ok := c.Get(ctx, "fp1", 1)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if entry.Status != "allowed" || entry.PolicyVersion != 1 {
		t.Errorf("unexpected entry %+v", entry)
	}
	if l2.sets != 1 {
		t.Errorf("expected 1 L2 write, got %d", l2.sets)
	}
}

func TestTiered_SafetyInvariantEnforced(t *testing.T) {
	ctx := context.Background()

	unsafe := []firewall.ValidationResult{
		func() firewall.ValidationResult {
			r := safeResult("fp-blocked", 1)
			r.Verdict.Status = firewall.StatusBlocked
			r.Verdict.IsSafe = false
			return r
		}(),
		func() firewall.ValidationResult {
			r := safeResult("fp-warned", 1)
			r.Verdict.Status = firewall.StatusWarned
			return r
		}(),
		func() firewall.ValidationResult {
			r := safeResult("fp-findings", 1)
			r.Verdict.Findings = []firewall.Finding{{PatternName: "us_ssn"}}
			return r
		}(),
		func() firewall.ValidationResult {
			r := safeResult("fp-degraded", 1)
			r.DegradedDetectors = []string{"semantic"}
			return r
		}(),
		func() firewall.ValidationResult {
			r := safeResult("fp-truncated", 1)
			r.Truncated = true
			return r
		}(),
	}

	for _, res := range unsafe {
		c := NewTiered(NewL1(8, time.Minute), newFakeShared(), time.Hour, zap.NewNop())
		c.Put(ctx, res)
		if _, ok := c.Get(ctx, res.PromptFingerprint, 1); ok {
			t.Errorf("result %s must not be cacheable", res.PromptFingerprint)
		}
	}
}

func TestTiered_L2HitPromotesToL1(t *testing.T) {
	l2 := newFakeShared()
	l2.entries["fp"] = Entry{RequestID: "r", Status: "allowed", PolicyVersion: 3}
	c := NewTiered(NewL1(8, time.Minute), l2, time.Hour, zap.NewNop())
	ctx := context.Background()

	if _, ok := c.Get(ctx, "fp", 3); !ok {
		t.Fatal("expected L2 hit")
	}

	// Break L2: a promoted entry must now be served from L1.
	l2.fail = errors.New("redis down")
	if _, ok := c.Get(ctx, "fp", 3); !ok {
		t.Error("expected promoted L1 hit with L2 down")
	}

	stats := c.Stats()
	if stats.L2Hits != 1 || stats.L1Hits != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestTiered_StalePolicyVersionIsMissAndDeleted(t *testing.T) {
	l2 := newFakeShared()
	c := NewTiered(NewL1(8, time.Minute), l2, time.Hour, zap.NewNop())
	ctx := context.Background()

	c.Put(ctx, safeResult("fp", 1))

	if _, ok := c.Get(ctx, "fp", 2); ok {
		t.Fatal("entry stored under version 1 must miss for version 2")
	}
	// L1 copy was lazily deleted; the next version-1 read must also miss L1
	// and fall through to L2 (which still holds the entry, version check
	// there passes).
	if _, ok := c.Get(ctx, "fp", 1); !ok {
		t.Error("expected L2 to still serve the version-1 entry")
	}
}

func TestTiered_BackendErrorDowngradesToMiss(t *testing.T) {
	l2 := newFakeShared()
	l2.fail = errors.New("connection refused")
	c := NewTiered(NewL1(8, time.Minute), l2, time.Hour, zap.NewNop())
	ctx := context.Background()

	if _, ok := c.Get(ctx, "fp", 1); ok {
		t.Fatal("backend failure must read as a miss")
	}
	// Put must not panic or surface the write failure.
	c.Put(ctx, safeResult("fp", 1))

	if stats := c.Stats(); stats.Errors != 2 {
		t.Errorf("expected 2 counted errors (read + write), got %d", stats.Errors)
	}
}

func TestTiered_NilL2IsL1Only(t *testing.T) {
	c := NewTiered(NewL1(8, time.Minute), nil, 0, zap.NewNop())
	ctx := context.Background()

	c.Put(ctx, safeResult("fp", 1))
	if _, ok := c.Get(ctx, "fp", 1); !ok {
		t.Fatal("expected L1-only hit")
	}
	if stats := c.Stats(); stats.L2Hits != 0 || stats.Errors != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}
