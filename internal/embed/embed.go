// Package embed provides the Embedder collaborator: a fixed-dimensional
// vector for a piece of text, backed either by a local ONNX model or a
// remote AWS Bedrock embedding model.
package embed

import "context"

// MaxEmbedChars is the truncation length the SemanticDetector applies
// before calling Embed.
const MaxEmbedChars = 2048

// Embedder produces a fixed-dimensional embedding vector for text. Embed
// must respect ctx's deadline: a slow backend should return ctx.Err()
// rather than block past it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Dimension reports the embedding width Embed returns, used by callers
	// to size VectorIndex comparisons without a round trip.
	Dimension() int
}

// Truncate caps text at maxChars runes, cutting on a rune boundary so
// multi-byte UTF-8 text is never split mid-codepoint.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = MaxEmbedChars
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
