// Package storage implements the DetectionSink: the append-only consumer
// of decisions and findings, persisted to ClickHouse in production with a
// structured-log fallback for local development.
package storage

import "time"

// DetectionSink is the interface the pipeline publishes results through.
// Write() must NEVER block the caller; a sink failure is counted, not
// surfaced.
type DetectionSink interface {
	Write(event *DetectionEvent)
	Close()
}

// DetectionEvent is one Validate decision flattened for columnar storage.
// Findings are stored as parallel arrays, one element per finding.
type DetectionEvent struct {
	RequestID         string
	Timestamp         time.Time
	PolicyID          string
	PolicyVersion     int64
	Status            string
	MatchedRule       string
	Message           string
	PromptPreview     string // first 500 chars; the only place prompt text leaves the process
	PromptFingerprint string
	PromptSize        uint32
	FindingTypes      []string
	FindingPatterns   []string
	FindingCategories []string
	FindingSeverities []string
	FindingScores     []float64
	UserID            string
	DegradedDetectors []string
	Truncated         bool
	Cached            bool
	LatencyMs         float64
}

// PromptPreviewLength is the max chars stored in prompt_preview.
const PromptPreviewLength = 500

// TruncatePrompt returns the first maxLen runes of text for preview
// storage. It never splits a multi-byte UTF-8 character.
func TruncatePrompt(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen])
}
