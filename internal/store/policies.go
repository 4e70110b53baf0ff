package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Policy represents a row in the policies table. Rules, Allowlist, and
// Denylist are JSONB in the wire shape policy.Source uses, so the HTTP API
// and the PostgresProvider round-trip the same documents.
type Policy struct {
	PolicyID          string
	Version           int64
	Enabled           bool
	SemanticThreshold float64
	DefaultAction     string
	Rules             json.RawMessage
	Allowlist         json.RawMessage // nullable JSONB
	Denylist          json.RawMessage // nullable JSONB
	UpdatedAt         time.Time
}

// UpsertPolicyParams holds the fields for a full policy create-or-replace.
// Version is assigned by the database: inserts start at 1, replacements
// bump the stored version by one so every edit invalidates cached verdicts
// via fingerprint change.
type UpsertPolicyParams struct {
	PolicyID          string
	Enabled           bool
	SemanticThreshold float64
	DefaultAction     string
	Rules             json.RawMessage
	Allowlist         json.RawMessage // may be nil
	Denylist          json.RawMessage // may be nil
}

// GetPolicy returns the policy row, or nil if not found.
func (s *Store) GetPolicy(ctx context.Context, policyID string) (*Policy, error) {
	var p Policy
	err := s.db.QueryRowContext(ctx, `
		SELECT policy_id, version, enabled, semantic_threshold, default_action,
		       rules, COALESCE(allowlist, 'null'::jsonb), COALESCE(denylist, 'null'::jsonb), updated_at
		FROM policies WHERE policy_id = $1`, policyID,
	).Scan(&p.PolicyID, &p.Version, &p.Enabled, &p.SemanticThreshold, &p.DefaultAction,
		&p.Rules, &p.Allowlist, &p.Denylist, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetPolicy: %w", err)
	}
	return &p, nil
}

// ListPolicies returns all policy rows ordered by policy_id.
func (s *Store) ListPolicies(ctx context.Context) ([]Policy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT policy_id, version, enabled, semantic_threshold, default_action,
		       rules, COALESCE(allowlist, 'null'::jsonb), COALESCE(denylist, 'null'::jsonb), updated_at
		FROM policies ORDER BY policy_id`)
	if err != nil {
		return nil, fmt.Errorf("ListPolicies: %w", err)
	}
	defer rows.Close()

	var policies []Policy
	for rows.Next() {
		var p Policy
		if err := rows.Scan(&p.PolicyID, &p.Version, &p.Enabled, &p.SemanticThreshold, &p.DefaultAction,
			&p.Rules, &p.Allowlist, &p.Denylist, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ListPolicies: scan: %w", err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListPolicies: rows: %w", err)
	}
	return policies, nil
}

// UpsertPolicy creates the policy at version 1 or replaces it with the
// stored version incremented. The returned row carries the new version.
func (s *Store) UpsertPolicy(ctx context.Context, params UpsertPolicyParams) (*Policy, error) {
	rules := params.Rules
	if rules == nil {
		rules = json.RawMessage(`[]`)
	}

	var p Policy
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO policies (policy_id, version, enabled, semantic_threshold, default_action,
		                      rules, allowlist, denylist, updated_at)
		VALUES ($1, 1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (policy_id) DO UPDATE SET
			version            = policies.version + 1,
			enabled            = EXCLUDED.enabled,
			semantic_threshold = EXCLUDED.semantic_threshold,
			default_action     = EXCLUDED.default_action,
			rules              = EXCLUDED.rules,
			allowlist          = EXCLUDED.allowlist,
			denylist           = EXCLUDED.denylist,
			updated_at         = now()
		RETURNING policy_id, version, enabled, semantic_threshold, default_action,
		          rules, COALESCE(allowlist, 'null'::jsonb), COALESCE(denylist, 'null'::jsonb), updated_at`,
		params.PolicyID, params.Enabled, params.SemanticThreshold, params.DefaultAction,
		rules, nullableRaw(params.Allowlist), nullableRaw(params.Denylist),
	).Scan(&p.PolicyID, &p.Version, &p.Enabled, &p.SemanticThreshold, &p.DefaultAction,
		&p.Rules, &p.Allowlist, &p.Denylist, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("UpsertPolicy: %w", err)
	}
	return &p, nil
}

// DeletePolicy removes a policy row. Returns false if no row existed.
func (s *Store) DeletePolicy(ctx context.Context, policyID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM policies WHERE policy_id = $1`, policyID)
	if err != nil {
		return false, fmt.Errorf("DeletePolicy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("DeletePolicy: %w", err)
	}
	return n > 0, nil
}

// nullableRaw returns nil (SQL NULL) if the raw message is nil or empty.
func nullableRaw(v json.RawMessage) interface{} {
	if v == nil {
		return nil
	}
	return v
}
