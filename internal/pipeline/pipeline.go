// Package pipeline orchestrates a single validation call end-to-end:
// cache lookup, list checks, parallel detector fan-out under a shared
// deadline, policy evaluation, cache population, and sink publication.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sentrygate/promptwall/internal/cache"
	"github.com/sentrygate/promptwall/internal/detectors"
	"github.com/sentrygate/promptwall/internal/firewall"
	"github.com/sentrygate/promptwall/internal/policy"
	"github.com/sentrygate/promptwall/internal/storage"
)

// Defaults, overridable via DEADLINE_MS / MAX_PROMPT_BYTES / MAX_BATCH_SIZE.
const (
	DefaultDeadline       = 150 * time.Millisecond
	DefaultMaxPromptBytes = 64 * 1024
	DefaultMaxBatchSize   = 100
)

// Config bounds a Pipeline's per-request work.
type Config struct {
	Deadline       time.Duration
	MaxPromptBytes int
}

func (c Config) withDefaults() Config {
	if c.Deadline <= 0 {
		c.Deadline = DefaultDeadline
	}
	if c.MaxPromptBytes <= 0 {
		c.MaxPromptBytes = DefaultMaxPromptBytes
	}
	return c
}

// Pipeline fans a prompt out to all registered detectors in parallel and
// turns what comes back into a ValidationResult. All collaborators are
// injected; the pipeline owns no I/O of its own.
type Pipeline struct {
	policies  policy.Provider
	engine    *policy.Engine
	detectors []detectors.Detector
	cache     cache.ResultCache
	sink      storage.DetectionSink
	cfg       Config
	logger    *zap.Logger
}

// New wires a Pipeline. cache and sink must be non-nil; pass an L1-only
// tiered cache and a LogSink for a dependency-free deployment.
func New(policies policy.Provider, engine *policy.Engine, dets []detectors.Detector, resultCache cache.ResultCache, sink storage.DetectionSink, cfg Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		policies:  policies,
		engine:    engine,
		detectors: dets,
		cache:     resultCache,
		sink:      sink,
		cfg:       cfg.withDefaults(),
		logger:    logger,
	}
}

// detectorOutput holds a single detector's result alongside its name.
type detectorOutput struct {
	name     string
	findings []firewall.Finding
	degraded bool
	err      error
}

// Validate runs the full decision path for one prompt. It never returns an
// error: input and policy problems come back as a result with
// status=error, and every inter-component failure is recovered locally.
func (p *Pipeline) Validate(ctx context.Context, prompt firewall.Prompt) firewall.ValidationResult {
	start := time.Now()
	requestID := uuid.NewString()
	policyID := prompt.EffectivePolicyID()

	if prompt.Text == "" {
		return p.errorResult(requestID, policyID, start, "prompt is empty")
	}
	if len(prompt.Text) > p.cfg.MaxPromptBytes {
		return p.errorResult(requestID, policyID, start,
			fmt.Sprintf("prompt exceeds %d bytes", p.cfg.MaxPromptBytes))
	}

	pol, ok := p.policies.Policy(policyID)
	if !ok {
		return p.errorResult(requestID, policyID, start,
			fmt.Sprintf("policy %q not found", policyID))
	}

	fingerprint := firewall.Fingerprint(policyID, pol.Version, prompt.Text)

	if entry, hit := p.cache.Get(ctx, fingerprint, pol.Version); hit {
		return firewall.ValidationResult{
			RequestID:         requestID,
			PromptFingerprint: fingerprint,
			Verdict: firewall.Verdict{
				Status:  firewall.StatusAllowed,
				IsSafe:  true,
				Message: entry.Message,
			},
			PolicyID:      policyID,
			PolicyVersion: pol.Version,
			Latency:       time.Since(start),
			Cached:        true,
			Timestamp:     time.Now(),
		}
	}

	// Literal list checks run before the detector fan-out: a denylist hit
	// blocks without spending the latency budget, an allowlist hit allows
	// with the match recorded for observability only.
	if verdict, decided := p.checkLists(prompt.Text, pol); decided {
		res := p.finish(requestID, policyID, fingerprint, pol, verdict, nil, false, prompt, start)
		return res
	}

	findings, degraded, truncated := p.fanOut(ctx, prompt, pol)

	findings = firewall.DedupeFindings(findings)
	firewall.SortFindings(findings)

	verdict := p.engine.Evaluate(findings, pol)

	return p.finish(requestID, policyID, fingerprint, pol, verdict, degraded, truncated, prompt, start)
}

// ValidateBatch runs each request independently and in parallel under the
// caller's ctx, preserving input order. Batch is not atomic: one prompt's
// error result does not affect its siblings.
func (p *Pipeline) ValidateBatch(ctx context.Context, prompts []firewall.Prompt) []firewall.ValidationResult {
	results := make([]firewall.ValidationResult, len(prompts))
	done := make(chan int, len(prompts))
	for i := range prompts {
		go func(i int) {
			results[i] = p.Validate(ctx, prompts[i])
			done <- i
		}(i)
	}
	for range prompts {
		<-done
	}
	return results
}

// fanOut dispatches every detector concurrently and collects results until
// all have reported or the deadline fires. Detectors that did not report
// in time are marked degraded; their in-flight work is cancelled.
//
// Each goroutine sends into a channel buffered for all detectors, so the
// collector can stop reading at the deadline without leaking senders —
// late finishers complete their send and the channel is GC'd.
func (p *Pipeline) fanOut(ctx context.Context, prompt firewall.Prompt, pol firewall.Policy) (findings []firewall.Finding, degraded []string, truncated bool) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Deadline)
	defer cancel()

	ch := make(chan detectorOutput, len(p.detectors))
	for _, det := range p.detectors {
		go func(d detectors.Detector) {
			f, deg, err := d.Detect(ctx, prompt, pol)
			ch <- detectorOutput{name: d.Name(), findings: f, degraded: deg, err: err}
		}(det)
	}

	reported := make(map[string]bool, len(p.detectors))
	remaining := len(p.detectors)
	for remaining > 0 {
		select {
		case out := <-ch:
			remaining--
			reported[out.name] = true
			if out.err != nil {
				p.logger.Warn("detector error, treating as degraded",
					zap.String("detector", out.name),
					zap.Error(out.err),
				)
				degraded = append(degraded, out.name)
				continue
			}
			if out.degraded {
				degraded = append(degraded, out.name)
			}
			findings = append(findings, out.findings...)
		case <-ctx.Done():
			truncated = true
			p.logger.Warn("detector deadline exceeded, returning partial results",
				zap.Duration("deadline", p.cfg.Deadline),
				zap.Int("pending_detectors", remaining),
			)
			remaining = 0
		}
	}

	if truncated {
		for _, det := range p.detectors {
			if !reported[det.Name()] {
				degraded = append(degraded, det.Name())
			}
		}
	}
	return findings, degraded, truncated
}

// checkLists evaluates the policy's denylist then allowlist against the raw
// prompt text. decided is false when neither matched and the detector
// fan-out should run.
func (p *Pipeline) checkLists(text string, pol firewall.Policy) (firewall.Verdict, bool) {
	if !pol.Enabled {
		return firewall.Verdict{}, false
	}

	if m := policy.CheckList(text, pol.Denylist); m.Matched {
		f := listFinding("denylist", m)
		return firewall.Verdict{
			Status:      firewall.StatusBlocked,
			IsSafe:      false,
			MatchedRule: "denylist",
			Message:     fmt.Sprintf("Blocked by denylist %s %q", m.Kind, m.Value),
			Findings:    []firewall.Finding{f},
		}, true
	}

	if m := policy.CheckList(text, pol.Allowlist); m.Matched {
		f := listFinding("allowlist", m)
		return firewall.Verdict{
			Status:      firewall.StatusAllowed,
			IsSafe:      true,
			MatchedRule: "allowlist",
			Message:     "Allowed by allowlist",
			Findings:    []firewall.Finding{f},
		}, true
	}

	return firewall.Verdict{}, false
}

func listFinding(list string, m policy.ListMatch) firewall.Finding {
	return firewall.Finding{
		ID:          uuid.NewString(),
		Type:        firewall.FindingPolicy,
		PatternName: list + "_" + m.Kind,
		Category:    list,
		Severity:    firewall.SeverityInfo,
		Confidence:  1.0,
		Metadata:    map[string]string{"list": list, "kind": m.Kind, "value": m.Value},
	}
}

// finish assembles the ValidationResult, populates the cache when the
// verdict qualifies, and publishes to the sink. Cache and sink writes are
// best effort.
func (p *Pipeline) finish(requestID, policyID, fingerprint string, pol firewall.Policy, verdict firewall.Verdict, degraded []string, truncated bool, prompt firewall.Prompt, start time.Time) firewall.ValidationResult {
	res := firewall.ValidationResult{
		RequestID:         requestID,
		PromptFingerprint: fingerprint,
		Verdict:           verdict,
		PolicyID:          policyID,
		PolicyVersion:     pol.Version,
		Latency:           time.Since(start),
		Cached:            false,
		Timestamp:         time.Now(),
		DegradedDetectors: degraded,
		Truncated:         truncated,
	}

	// The cache layer re-checks the safety invariant; the request ctx may
	// already be past its deadline, so the write gets its own short budget.
	if cache.Cacheable(res) {
		putCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		p.cache.Put(putCtx, res)
		cancel()
	}

	p.sink.Write(p.buildEvent(res, prompt))
	return res
}

func (p *Pipeline) buildEvent(res firewall.ValidationResult, prompt firewall.Prompt) *storage.DetectionEvent {
	findings := res.Verdict.Findings
	types := make([]string, len(findings))
	patterns := make([]string, len(findings))
	categories := make([]string, len(findings))
	severities := make([]string, len(findings))
	scores := make([]float64, len(findings))
	for i, f := range findings {
		types[i] = f.Type.String()
		patterns[i] = f.PatternName
		categories[i] = f.Category
		severities[i] = f.Severity.String()
		scores[i] = f.Confidence
	}

	return &storage.DetectionEvent{
		RequestID:         res.RequestID,
		Timestamp:         res.Timestamp,
		PolicyID:          res.PolicyID,
		PolicyVersion:     res.PolicyVersion,
		Status:            res.Verdict.Status.String(),
		MatchedRule:       res.Verdict.MatchedRule,
		Message:           res.Verdict.Message,
		PromptPreview:     storage.TruncatePrompt(prompt.Text, storage.PromptPreviewLength),
		PromptFingerprint: res.PromptFingerprint,
		PromptSize:        uint32(len(prompt.Text)),
		FindingTypes:      types,
		FindingPatterns:   patterns,
		FindingCategories: categories,
		FindingSeverities: severities,
		FindingScores:     scores,
		UserID:            prompt.UserID,
		DegradedDetectors: res.DegradedDetectors,
		Truncated:         res.Truncated,
		Cached:            res.Cached,
		LatencyMs:         float64(res.Latency) / float64(time.Millisecond),
	}
}

func (p *Pipeline) errorResult(requestID, policyID string, start time.Time, message string) firewall.ValidationResult {
	return firewall.ValidationResult{
		RequestID: requestID,
		Verdict: firewall.Verdict{
			Status:  firewall.StatusError,
			IsSafe:  false,
			Message: message,
		},
		PolicyID:  policyID,
		Latency:   time.Since(start),
		Timestamp: time.Now(),
	}
}
