package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sentrygate/promptwall/internal/store"
)

// PolicyResp is the wire form of a stored policy row.
type PolicyResp struct {
	PolicyID          string          `json:"policy_id"`
	Version           int64           `json:"version"`
	Enabled           bool            `json:"enabled"`
	SemanticThreshold float64         `json:"semantic_threshold"`
	DefaultAction     string          `json:"default_action"`
	Rules             json.RawMessage `json:"rules"`
	Allowlist         json.RawMessage `json:"allowlist,omitempty"`
	Denylist          json.RawMessage `json:"denylist,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// PutPolicyRequest is the body of PUT /api/policies/{policy_id}. Version is
// not settable: the store assigns it so every edit bumps it monotonically.
type PutPolicyRequest struct {
	Enabled           bool            `json:"enabled"`
	SemanticThreshold float64         `json:"semantic_threshold"`
	DefaultAction     string          `json:"default_action"`
	Rules             json.RawMessage `json:"rules"`
	Allowlist         json.RawMessage `json:"allowlist,omitempty"`
	Denylist          json.RawMessage `json:"denylist,omitempty"`
}

func toPolicyResp(p *store.Policy) PolicyResp {
	return PolicyResp{
		PolicyID:          p.PolicyID,
		Version:           p.Version,
		Enabled:           p.Enabled,
		SemanticThreshold: p.SemanticThreshold,
		DefaultAction:     p.DefaultAction,
		Rules:             p.Rules,
		Allowlist:         p.Allowlist,
		Denylist:          p.Denylist,
		UpdatedAt:         p.UpdatedAt,
	}
}

// handleListPolicies implements GET /api/policies.
func (d *Dependencies) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := d.Store.ListPolicies(r.Context())
	if err != nil {
		d.Logger.Error("list policies failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to list policies"})
		return
	}
	resp := make([]PolicyResp, len(policies))
	for i := range policies {
		resp[i] = toPolicyResp(&policies[i])
	}
	writeJSON(w, http.StatusOK, map[string][]PolicyResp{"policies": resp})
}

// handleGetPolicy implements GET /api/policies/{policy_id}.
func (d *Dependencies) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	policyID := r.PathValue("policy_id")
	p, err := d.Store.GetPolicy(r.Context(), policyID)
	if err != nil {
		d.Logger.Error("get policy failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to get policy"})
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Policy not found"})
		return
	}
	writeJSON(w, http.StatusOK, toPolicyResp(p))
}

// handlePutPolicy implements PUT /api/policies/{policy_id}: full
// create-or-replace, after which the provider snapshot is refreshed so the
// next Validate sees the new version.
func (d *Dependencies) handlePutPolicy(w http.ResponseWriter, r *http.Request) {
	policyID := r.PathValue("policy_id")

	var req PutPolicyRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}

	p, err := d.Store.UpsertPolicy(r.Context(), store.UpsertPolicyParams{
		PolicyID:          policyID,
		Enabled:           req.Enabled,
		SemanticThreshold: req.SemanticThreshold,
		DefaultAction:     req.DefaultAction,
		Rules:             req.Rules,
		Allowlist:         req.Allowlist,
		Denylist:          req.Denylist,
	})
	if err != nil {
		d.Logger.Error("upsert policy failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to store policy"})
		return
	}

	if err := d.Policies.Reload(); err != nil {
		d.Logger.Warn("policy snapshot reload after write failed", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, toPolicyResp(p))
}

// handleDeletePolicy implements DELETE /api/policies/{policy_id}.
func (d *Dependencies) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	policyID := r.PathValue("policy_id")
	deleted, err := d.Store.DeletePolicy(r.Context(), policyID)
	if err != nil {
		d.Logger.Error("delete policy failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "Failed to delete policy"})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "Policy not found"})
		return
	}

	if err := d.Policies.Reload(); err != nil {
		d.Logger.Warn("policy snapshot reload after delete failed", zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}
