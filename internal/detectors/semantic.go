package detectors

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/sentrygate/promptwall/internal/embed"
	"github.com/sentrygate/promptwall/internal/firewall"
	"github.com/sentrygate/promptwall/internal/vectorindex"
)

// DefaultTopK is how many nearest references the semantic layer considers
// per prompt when a policy doesn't override it.
const DefaultTopK = 5

// SemanticDetector finds prompts that resemble known-sensitive reference
// text even when no regex pattern fires — paraphrased secrets, novel
// jailbreak phrasing, and the like.
type SemanticDetector struct {
	Embedder embed.Embedder
	Index    vectorindex.VectorIndex
	TopK     int
}

// NewSemanticDetector wires an Embedder and VectorIndex pair. TopK defaults
// to DefaultTopK.
func NewSemanticDetector(embedder embed.Embedder, index vectorindex.VectorIndex) *SemanticDetector {
	return &SemanticDetector{Embedder: embedder, Index: index, TopK: DefaultTopK}
}

func (d *SemanticDetector) Name() string { return "semantic" }

// Detect embeds the (truncated) prompt text, queries the reference index for
// its nearest neighbors, and emits a Finding for every match at or above the
// policy's semantic threshold. Embedder or index failures degrade the
// detector rather than failing the request: an unreachable embedding
// backend should never block a prompt that the regex layer would
// otherwise allow.
func (d *SemanticDetector) Detect(ctx context.Context, p firewall.Prompt, policy firewall.Policy) ([]firewall.Finding, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, true, nil
	}

	text := embed.Truncate(p.Text, embed.MaxEmbedChars)

	vector, err := d.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, true, nil
	}

	topK := d.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	matches, err := d.Index.Query(ctx, vector, topK)
	if err != nil {
		return nil, true, nil
	}

	threshold := policy.SemanticThreshold
	if threshold <= 0 {
		threshold = 0.85
	}

	span := []firewall.Span{{Start: 0, End: len(p.Text)}}
	findings := make([]firewall.Finding, 0, len(matches))
	for _, m := range matches {
		if m.Similarity < threshold {
			continue
		}
		findings = append(findings, firewall.Finding{
			ID:          uuid.NewString(),
			Type:        firewall.FindingSemantic,
			PatternName: m.Reference.Label,
			Category:    m.Reference.Category,
			Severity:    firewall.ParseSeverity(m.Reference.Severity),
			Confidence:  m.Similarity,
			MatchSpans:  span,
			Metadata: map[string]string{
				"reference_id": m.Reference.ID,
				"similarity":   strconv.FormatFloat(m.Similarity, 'f', 4, 64),
			},
		})
	}
	return findings, false, nil
}
