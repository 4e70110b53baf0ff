package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sentrygate/promptwall/internal/pattern"
	"github.com/sentrygate/promptwall/internal/pipeline"
	"github.com/sentrygate/promptwall/internal/policy"
	"github.com/sentrygate/promptwall/internal/store"
)

// Dependencies holds shared state injected into all HTTP handlers.
type Dependencies struct {
	Pipeline     *pipeline.Pipeline
	Patterns     pattern.Provider
	Policies     policy.Provider
	Store        *store.Store // nil when Postgres is not configured
	Logger       *zap.Logger
	MaxBatchSize int
}

// NewRouter builds the HTTP mux with all routes wired up.
func NewRouter(deps *Dependencies) http.Handler {
	if deps.MaxBatchSize <= 0 {
		deps.MaxBatchSize = pipeline.DefaultMaxBatchSize
	}

	mux := http.NewServeMux()

	// Validation
	mux.HandleFunc("POST /v1/validate", deps.handleValidate)
	mux.HandleFunc("POST /v1/validate/batch", deps.handleValidateBatch)

	// Hot reload of the snapshot providers
	mux.HandleFunc("POST /v1/patterns/reload", deps.handleReloadPatterns)
	mux.HandleFunc("POST /v1/policies/reload", deps.handleReloadPolicies)

	// Policy CRUD (only when Postgres is configured)
	if deps.Store != nil {
		mux.HandleFunc("GET /api/policies", deps.handleListPolicies)
		mux.HandleFunc("GET /api/policies/{policy_id}", deps.handleGetPolicy)
		mux.HandleFunc("PUT /api/policies/{policy_id}", deps.handlePutPolicy)
		mux.HandleFunc("DELETE /api/policies/{policy_id}", deps.handleDeletePolicy)
	}

	// Health check
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return requestLogging(mux, deps.Logger)
}
