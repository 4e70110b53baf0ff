// Package vectorindex provides the VectorIndex collaborator: an
// approximate nearest-neighbor store over known-sensitive reference
// embeddings.
package vectorindex

import "context"

// Reference is one labeled entry in the index.
type Reference struct {
	ID       string
	Label    string
	Category string
	Severity string
	Vector   []float32
}

// Match is one nearest-neighbor result.
type Match struct {
	Reference  Reference
	Similarity float64
}

// VectorIndex answers top-K cosine-similarity queries against its loaded
// reference set.
type VectorIndex interface {
	// Query returns up to k references most similar to vector, sorted by
	// descending similarity.
	Query(ctx context.Context, vector []float32, k int) ([]Match, error)
	// Load replaces the index's working set (used by the Redis-backed
	// loader's poll refresh and by tests).
	Load(refs []Reference)
	// Size reports how many references are currently loaded.
	Size() int
}
