package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sentrygate/promptwall/internal/cache"
	"github.com/sentrygate/promptwall/internal/detectors"
	"github.com/sentrygate/promptwall/internal/firewall"
	"github.com/sentrygate/promptwall/internal/pattern"
	"github.com/sentrygate/promptwall/internal/pipeline"
	"github.com/sentrygate/promptwall/internal/policy"
	"github.com/sentrygate/promptwall/internal/storage"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	patterns := pattern.NewStaticProvider(pattern.DefaultCatalog())
	policies := policy.NewStaticProvider(map[string]firewall.Policy{
		"default": policy.DefaultPolicy(),
	})
	p := pipeline.New(
		policies,
		policy.NewEngine(),
		[]detectors.Detector{detectors.NewRegexDetector(patterns)},
		cache.NewTiered(cache.NewL1(64, time.Minute), nil, 0, logger),
		storage.NewLogSink(logger),
		pipeline.Config{},
		logger,
	)
	return NewRouter(&Dependencies{
		Pipeline:     p,
		Patterns:     patterns,
		Policies:     policies,
		Logger:       logger,
		MaxBatchSize: 3,
	})
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestValidateEndpoint_SafePrompt(t *testing.T) {
	h := newTestRouter(t)
	rec := postJSON(t, h, "/v1/validate", ValidateRequest{Prompt: "What is the capital of France?"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp ValidationResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "allowed" || !resp.IsSafe {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(resp.Detections) != 0 {
		t.Errorf("expected no detections, got %v", resp.Detections)
	}
	if resp.RequestID == "" || resp.PromptFingerprint == "" {
		t.Error("request_id and prompt_fingerprint must be set")
	}
}

func TestValidateEndpoint_BlockedKeySerialization(t *testing.T) {
	h := newTestRouter(t)
	rec := postJSON(t, h, "/v1/validate", ValidateRequest{
		Prompt: "My API key is sk-abcdefghijklmnopqrstuvwxyz012345",
	})

	var resp ValidationResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "blocked" || resp.IsSafe {
		t.Fatalf("expected blocked, got %+v", resp)
	}
	det := resp.Detections[0]
	if det.DetectionType != "regex" || det.MatchedPattern != "openai_api_key" {
		t.Errorf("unexpected detection %+v", det)
	}
	if det.Severity != "critical" || det.ConfidenceScore != 1.0 {
		t.Errorf("unexpected detection %+v", det)
	}
	if len(det.MatchPositions) != 1 || det.MatchPositions[0][0] != 14 {
		t.Errorf("unexpected match positions %v", det.MatchPositions)
	}
	if !strings.Contains(resp.Message, "openai_api_key") {
		t.Errorf("message %q does not name the finding", resp.Message)
	}
}

func TestValidateEndpoint_MalformedBody(t *testing.T) {
	h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/validate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestValidateEndpoint_EmptyPromptIsErrorStatus(t *testing.T) {
	h := newTestRouter(t)
	rec := postJSON(t, h, "/v1/validate", ValidateRequest{Prompt: ""})

	if rec.Code != http.StatusOK {
		t.Fatalf("input errors surface in the result, not as transport errors; status = %d", rec.Code)
	}
	var resp ValidationResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "error" {
		t.Errorf("status = %q, want error", resp.Status)
	}
}

func TestBatchEndpoint_OrderAndLimit(t *testing.T) {
	h := newTestRouter(t)

	rec := postJSON(t, h, "/v1/validate/batch", BatchRequest{Prompts: []ValidateRequest{
		{Prompt: "What is the capital of France?"},
		{Prompt: "My API key is sk-abcdefghijklmnopqrstuvwxyz012345"},
	}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp BatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results", len(resp.Results))
	}
	if resp.Results[0].Status != "allowed" || resp.Results[1].Status != "blocked" {
		t.Errorf("results out of order: %s, %s", resp.Results[0].Status, resp.Results[1].Status)
	}

	// Over the limit (router configured with MaxBatchSize=3).
	over := BatchRequest{Prompts: make([]ValidateRequest, 4)}
	for i := range over.Prompts {
		over.Prompts[i] = ValidateRequest{Prompt: "hello"}
	}
	rec = postJSON(t, h, "/v1/validate/batch", over)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized batch status = %d, want 400", rec.Code)
	}

	rec = postJSON(t, h, "/v1/validate/batch", BatchRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch status = %d, want 400", rec.Code)
	}
}

func TestReloadEndpoints(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{"/v1/patterns/reload", "/v1/policies/reload"} {
		rec := postJSON(t, h, path, struct{}{})
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
}
