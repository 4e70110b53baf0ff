package httpapi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/sentrygate/promptwall/internal/firewall"
)

// handleValidate implements POST /v1/validate. Input and policy problems
// come back as a 200 with status=error per the pipeline's contract; only a
// malformed body is a transport-level 400.
func (d *Dependencies) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}

	res := d.Pipeline.Validate(r.Context(), firewall.Prompt{
		Text:     req.Prompt,
		UserID:   req.UserID,
		PolicyID: req.PolicyID,
		Context:  req.Context,
	})

	writeJSON(w, http.StatusOK, toValidationResp(res))
}

// handleValidateBatch implements POST /v1/validate/batch.
func (d *Dependencies) handleValidateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if len(req.Prompts) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "prompts is required"})
		return
	}
	if len(req.Prompts) > d.MaxBatchSize {
		writeJSON(w, http.StatusBadRequest, ErrorResp{
			Detail: fmt.Sprintf("batch size %d exceeds maximum %d", len(req.Prompts), d.MaxBatchSize),
		})
		return
	}

	prompts := make([]firewall.Prompt, len(req.Prompts))
	for i, p := range req.Prompts {
		prompts[i] = firewall.Prompt{
			Text:     p.Prompt,
			UserID:   p.UserID,
			PolicyID: p.PolicyID,
			Context:  p.Context,
		}
	}

	results := d.Pipeline.ValidateBatch(r.Context(), prompts)

	resp := BatchResponse{Results: make([]ValidationResp, len(results))}
	for i, res := range results {
		resp.Results[i] = toValidationResp(res)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReloadPatterns implements POST /v1/patterns/reload.
func (d *Dependencies) handleReloadPatterns(w http.ResponseWriter, _ *http.Request) {
	if err := d.Patterns.Reload(); err != nil {
		d.Logger.Error("pattern reload failed", zap.Error(err))
		writeJSON(w, reloadStatus(err), ErrorResp{Detail: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

// handleReloadPolicies implements POST /v1/policies/reload.
func (d *Dependencies) handleReloadPolicies(w http.ResponseWriter, _ *http.Request) {
	if err := d.Policies.Reload(); err != nil {
		d.Logger.Error("policy reload failed", zap.Error(err))
		writeJSON(w, reloadStatus(err), ErrorResp{Detail: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

// reloadStatus maps a reload failure to a status code: a malformed source
// file is the caller's problem (422), an unreadable backend is ours (500).
func reloadStatus(err error) int {
	if firewall.IsKind(err, firewall.ErrPatternLoadError) || firewall.IsKind(err, firewall.ErrPolicyMalformed) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
