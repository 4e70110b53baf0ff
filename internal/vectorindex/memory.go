package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is a mutex-guarded, brute-force cosine-similarity
// implementation. At the reference-set sizes a prompt firewall's
// sensitive-content catalog realistically reaches (hundreds to low
// thousands of entries), a linear scan over the loaded set stays well
// inside the per-request deadline, so nothing approximate is needed.
type MemoryIndex struct {
	mu   sync.RWMutex
	refs []Reference
}

// NewMemoryIndex returns an empty index; call Load to populate it.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Load(refs []Reference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs = refs
}

func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.refs)
}

func (m *MemoryIndex) Query(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 5
	}

	m.mu.RLock()
	refs := m.refs
	m.mu.RUnlock()

	matches := make([]Match, 0, len(refs))
	for _, r := range refs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		sim := cosineSimilarity(vector, r.Vector)
		matches = append(matches, Match{Reference: r, Similarity: sim})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Reference.ID < matches[j].Reference.ID
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
