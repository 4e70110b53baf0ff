// Package detectors implements the RegexDetector and SemanticDetector
// layers composed by the pipeline fan-out.
package detectors

import (
	"context"

	"github.com/sentrygate/promptwall/internal/firewall"
)

// Detector is the minimal, uniform contract every detection layer
// implements — the pipeline never downcasts to a concrete type, so adding a
// detector is just constructing another instance.
type Detector interface {
	// Name identifies the detector in DegradedDetectors and log fields.
	Name() string
	// Detect scans p under the given policy and returns findings. degraded
	// reports a recoverable failure (timeout, backend error) distinct from
	// err, which is reserved for conditions the caller must treat as fatal
	// to the call (there are none today — detectors always degrade rather
	// than error).
	Detect(ctx context.Context, p firewall.Prompt, policy firewall.Policy) (findings []firewall.Finding, degraded bool, err error)
}
