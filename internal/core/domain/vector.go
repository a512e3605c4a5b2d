package domain

import (
	"fmt"
	"sort"
)

// VectorQueryMargin is the number of extra candidates requested from a
// backing store beyond TopK and the excluded IDs.
const VectorQueryMargin = 5

// VectorRecord is a node's embedding as stored in a vector index.
// Metadata values are restricted to string, int, float and bool.
type VectorRecord struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// VectorMatch is one ranked result of a vector query.
type VectorMatch struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// QueryOptions controls a similarity query.
type QueryOptions struct {
	// TopK is the maximum number of matches returned.
	TopK int

	// Threshold is the minimum score a match must reach.
	Threshold float64

	// ExcludeIDs are dropped from the results.
	ExcludeIDs []string
}

// CandidateCount is the number of raw results to request from a backing
// store so that exclusions do not starve the final TopK.
func (o QueryOptions) CandidateCount() int {
	return o.TopK + len(o.ExcludeIDs) + VectorQueryMargin
}

// FilterMatches orders raw candidates by descending score, then drops
// excluded and duplicate IDs and scores below the threshold, and
// truncates to TopK. Equal scores keep the backing store's order.
func FilterMatches(candidates []VectorMatch, opts QueryOptions) []VectorMatch {
	sorted := make([]VectorMatch, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	skip := make(map[string]struct{}, len(opts.ExcludeIDs))
	for _, id := range opts.ExcludeIDs {
		skip[id] = struct{}{}
	}

	out := make([]VectorMatch, 0, opts.TopK)
	for _, m := range sorted {
		if len(out) >= opts.TopK {
			break
		}
		if _, excluded := skip[m.ID]; excluded {
			continue
		}
		if m.Score < opts.Threshold {
			continue
		}
		skip[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// SanitizeMetadata returns a copy of metadata holding only scalar values.
// Nil values are dropped and other non-scalars are rendered with %v.
func SanitizeMetadata(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		switch val := v.(type) {
		case nil:
			continue
		case string, bool, int, int32, int64, uint, uint32, uint64, float32, float64:
			out[k] = val
		case fmt.Stringer:
			out[k] = val.String()
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}

// CheckEmbeddingCount returns ErrEmbeddingCountMismatch unless a batch
// embedding call returned exactly one vector per input text.
func CheckEmbeddingCount(texts int, vectors [][]float32) error {
	if len(vectors) != texts {
		return fmt.Errorf("%w: requested %d, got %d", ErrEmbeddingCountMismatch, texts, len(vectors))
	}
	return nil
}
