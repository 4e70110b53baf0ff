// Package httpapi is the thin HTTP wrapper over the pipeline: request
// decode, core call, response encode. No detection logic lives here.
package httpapi

import (
	"time"

	"github.com/sentrygate/promptwall/internal/firewall"
)

// ValidateRequest is the body of POST /v1/validate.
type ValidateRequest struct {
	Prompt   string            `json:"prompt"`
	UserID   string            `json:"user_id,omitempty"`
	PolicyID string            `json:"policy_id,omitempty"`
	Context  map[string]string `json:"context,omitempty"`
}

// BatchRequest is the body of POST /v1/validate/batch.
type BatchRequest struct {
	Prompts []ValidateRequest `json:"prompts"`
}

// DetectionResp is one serialized finding.
type DetectionResp struct {
	ID              string            `json:"id"`
	DetectionType   string            `json:"detection_type"`
	MatchedPattern  string            `json:"matched_pattern"`
	ConfidenceScore float64           `json:"confidence_score"`
	Severity        string            `json:"severity"`
	Category        string            `json:"category"`
	MatchPositions  [][2]int          `json:"match_positions"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// ValidationResp is one serialized ValidationResult.
type ValidationResp struct {
	RequestID         string          `json:"request_id"`
	Status            string          `json:"status"`
	IsSafe            bool            `json:"is_safe"`
	MatchedRule       string          `json:"matched_rule,omitempty"`
	Message           string          `json:"message"`
	Detections        []DetectionResp `json:"detections"`
	PolicyID          string          `json:"policy_id"`
	PolicyVersion     int64           `json:"policy_version"`
	PromptFingerprint string          `json:"prompt_fingerprint"`
	Cached            bool            `json:"cached"`
	LatencyMs         float64         `json:"latency_ms"`
	DegradedDetectors []string        `json:"degraded_detectors,omitempty"`
	Truncated         bool            `json:"truncated,omitempty"`
	Timestamp         time.Time       `json:"timestamp"`
}

// BatchResponse is the body of a batch validate reply, results in input
// order.
type BatchResponse struct {
	Results []ValidationResp `json:"results"`
}

// ErrorResp is the uniform error body.
type ErrorResp struct {
	Detail string `json:"detail"`
}

// toValidationResp flattens a core result into its wire shape.
func toValidationResp(res firewall.ValidationResult) ValidationResp {
	detections := make([]DetectionResp, 0, len(res.Verdict.Findings))
	for _, f := range res.Verdict.Findings {
		positions := make([][2]int, 0, len(f.MatchSpans))
		for _, s := range f.MatchSpans {
			positions = append(positions, [2]int{s.Start, s.End})
		}
		detections = append(detections, DetectionResp{
			ID:              f.ID,
			DetectionType:   f.Type.String(),
			MatchedPattern:  f.PatternName,
			ConfidenceScore: f.Confidence,
			Severity:        f.Severity.String(),
			Category:        f.Category,
			MatchPositions:  positions,
			Metadata:        f.Metadata,
		})
	}

	return ValidationResp{
		RequestID:         res.RequestID,
		Status:            res.Verdict.Status.String(),
		IsSafe:            res.Verdict.IsSafe,
		MatchedRule:       res.Verdict.MatchedRule,
		Message:           res.Verdict.Message,
		Detections:        detections,
		PolicyID:          res.PolicyID,
		PolicyVersion:     res.PolicyVersion,
		PromptFingerprint: res.PromptFingerprint,
		Cached:            res.Cached,
		LatencyMs:         float64(res.Latency) / float64(time.Millisecond),
		DegradedDetectors: res.DegradedDetectors,
		Truncated:         res.Truncated,
		Timestamp:         res.Timestamp,
	}
}
