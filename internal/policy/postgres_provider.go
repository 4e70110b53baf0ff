package policy

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/sentrygate/promptwall/internal/firewall"
)

// reloadTimeout bounds a single Postgres reload, independent of any
// in-flight Validate call's own deadline.
const reloadTimeout = 5 * time.Second

// PostgresProvider loads policies from a Postgres table, following the
// database/sql + pgx driver idiom of store.Store (store/policies.go):
// plain SQL, no ORM, errors wrapped with the calling method's name.
type PostgresProvider struct {
	db       *sql.DB
	policies atomic.Pointer[map[string]firewall.Policy]
}

// NewPostgresProvider opens a pgx-backed *sql.DB for dsn and loads the
// policy table once.
func NewPostgresProvider(dsn string) (*PostgresProvider, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("policy.NewPostgresProvider: open: %w", err)
	}
	pp := &PostgresProvider{db: db}
	if err := pp.Reload(); err != nil {
		db.Close()
		return nil, err
	}
	return pp, nil
}

func (pp *PostgresProvider) Policy(policyID string) (firewall.Policy, bool) {
	m := pp.policies.Load()
	if m == nil {
		return firewall.Policy{}, false
	}
	p, ok := (*m)[policyID]
	return p, ok
}

// Reload re-queries the policies table in full and atomically swaps the
// published snapshot, the same pattern as FileProvider.Reload.
func (pp *PostgresProvider) Reload() error {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	rows, err := pp.db.QueryContext(ctx, `
		SELECT policy_id, version, enabled, semantic_threshold, default_action,
		       rules, allowlist, denylist
		FROM policies`)
	if err != nil {
		return fmt.Errorf("policy.PostgresProvider.Reload: query: %w", err)
	}
	defer rows.Close()

	m := make(map[string]firewall.Policy)
	for rows.Next() {
		var (
			src           Source
			rulesJSON     []byte
			allowlistJSON []byte
			denylistJSON  []byte
		)
		if err := rows.Scan(&src.PolicyID, &src.Version, &src.Enabled,
			&src.SemanticThreshold, &src.DefaultAction,
			&rulesJSON, &allowlistJSON, &denylistJSON); err != nil {
			return fmt.Errorf("policy.PostgresProvider.Reload: scan: %w", err)
		}
		if len(rulesJSON) > 0 {
			if err := json.Unmarshal(rulesJSON, &src.Rules); err != nil {
				return fmt.Errorf("policy.PostgresProvider.Reload: %s: rules: %w", src.PolicyID, err)
			}
		}
		if len(allowlistJSON) > 0 {
			if err := json.Unmarshal(allowlistJSON, &src.Allowlist); err != nil {
				return fmt.Errorf("policy.PostgresProvider.Reload: %s: allowlist: %w", src.PolicyID, err)
			}
		}
		if len(denylistJSON) > 0 {
			if err := json.Unmarshal(denylistJSON, &src.Denylist); err != nil {
				return fmt.Errorf("policy.PostgresProvider.Reload: %s: denylist: %w", src.PolicyID, err)
			}
		}
		m[src.PolicyID] = compileSource(src)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("policy.PostgresProvider.Reload: rows: %w", err)
	}
	if _, ok := m["default"]; !ok {
		m["default"] = DefaultPolicy()
	}

	pp.policies.Store(&m)
	return nil
}

// Close releases the underlying connection pool.
func (pp *PostgresProvider) Close() error {
	return pp.db.Close()
}
