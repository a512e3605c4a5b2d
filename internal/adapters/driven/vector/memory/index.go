// Package memory provides an in-process VectorIndex using brute-force
// cosine similarity.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// namespace keeps records in insertion order so equal scores rank stably.
type namespace struct {
	order   []string
	records map[string]domain.VectorRecord
}

// Index is a thread-safe in-memory vector index.
type Index struct {
	mu         sync.RWMutex
	namespaces map[string]*namespace
}

// New creates an empty index.
func New() *Index {
	return &Index{namespaces: make(map[string]*namespace)}
}

// Upsert inserts or replaces records. A replaced record keeps its
// original position.
func (i *Index) Upsert(_ context.Context, ns string, records []domain.VectorRecord) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	n, ok := i.namespaces[ns]
	if !ok {
		n = &namespace{records: make(map[string]domain.VectorRecord)}
		i.namespaces[ns] = n
	}

	for _, r := range records {
		if _, exists := n.records[r.ID]; !exists {
			n.order = append(n.order, r.ID)
		}
		vec := make([]float32, len(r.Vector))
		copy(vec, r.Vector)
		n.records[r.ID] = domain.VectorRecord{
			ID:       r.ID,
			Vector:   vec,
			Metadata: domain.SanitizeMetadata(r.Metadata),
		}
	}
	return nil
}

// Query scores every record of the namespace, takes the best
// CandidateCount of them and applies domain.FilterMatches.
func (i *Index) Query(_ context.Context, ns string, vector []float32, opts domain.QueryOptions) ([]domain.VectorMatch, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	n, ok := i.namespaces[ns]
	if !ok {
		return []domain.VectorMatch{}, nil
	}

	candidates := make([]domain.VectorMatch, 0, len(n.order))
	for _, id := range n.order {
		r := n.records[id]
		candidates = append(candidates, domain.VectorMatch{
			ID:       id,
			Score:    Cosine(vector, r.Vector),
			Metadata: r.Metadata,
		})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Score > candidates[b].Score
	})
	if limit := opts.CandidateCount(); len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return domain.FilterMatches(candidates, opts), nil
}

// Delete removes records by ID.
func (i *Index) Delete(_ context.Context, ns string, ids []string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	n, ok := i.namespaces[ns]
	if !ok {
		return nil
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
		delete(n.records, id)
	}

	kept := n.order[:0]
	for _, id := range n.order {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	n.order = kept
	return nil
}

// DeleteNamespace removes every record of the namespace.
func (i *Index) DeleteNamespace(_ context.Context, ns string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.namespaces, ns)
	return nil
}

// Len returns the number of records in a namespace.
func (i *Index) Len(ns string) int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if n, ok := i.namespaces[ns]; ok {
		return len(n.order)
	}
	return 0
}

// Close releases resources.
func (i *Index) Close() error {
	return nil
}

// Cosine returns the cosine similarity of a and b. A zero vector, or
// vectors of different length, score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for k := range a {
		x, y := float64(a[k]), float64(b[k])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
