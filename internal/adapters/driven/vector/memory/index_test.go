package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

func ids(matches []domain.VectorMatch) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.ID
	}
	return out
}

func TestQuery_RanksAndFilters(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Upsert(ctx, "g1", []domain.VectorRecord{
		{ID: "self", Vector: []float32{1, 0}},
		{ID: "close", Vector: []float32{0.9, 0.1}},
		{ID: "far", Vector: []float32{0, 1}},
		{ID: "same", Vector: []float32{2, 0}},
	}))

	got, err := idx.Query(ctx, "g1", []float32{1, 0}, domain.QueryOptions{
		TopK:       4,
		Threshold:  0.78,
		ExcludeIDs: []string{"self"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"same", "close"}, ids(got))
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
}

func TestQuery_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Upsert(ctx, "g1", []domain.VectorRecord{{ID: "a", Vector: []float32{1, 0}}}))
	require.NoError(t, idx.Upsert(ctx, "g2", []domain.VectorRecord{{ID: "b", Vector: []float32{1, 0}}}))

	got, err := idx.Query(ctx, "g2", []float32{1, 0}, domain.QueryOptions{TopK: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(got))

	got, err = idx.Query(ctx, "missing", []float32{1, 0}, domain.QueryOptions{TopK: 4})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQuery_TiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Upsert(ctx, "g", []domain.VectorRecord{
		{ID: "b", Vector: []float32{1, 1}},
		{ID: "a", Vector: []float32{1, 1}},
		{ID: "c", Vector: []float32{1, 1}},
	}))
	// Replacing keeps the original slot.
	require.NoError(t, idx.Upsert(ctx, "g", []domain.VectorRecord{{ID: "b", Vector: []float32{1, 1}}}))

	got, err := idx.Query(ctx, "g", []float32{1, 1}, domain.QueryOptions{TopK: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(got))
}

func TestQuery_ZeroVectorsNeverLink(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Upsert(ctx, "g", []domain.VectorRecord{
		{ID: "a", Vector: make([]float32, 4)},
		{ID: "b", Vector: make([]float32, 4)},
	}))

	got, err := idx.Query(ctx, "g", make([]float32, 4), domain.QueryOptions{TopK: 4, Threshold: 0.78, ExcludeIDs: []string{"a"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpsert_SanitizesMetadata(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Upsert(ctx, "g", []domain.VectorRecord{{
		ID:       "a",
		Vector:   []float32{1},
		Metadata: map[string]any{"tags": []string{"x", "y"}, "n": 3, "nil": nil},
	}}))

	got, err := idx.Query(ctx, "g", []float32{1}, domain.QueryOptions{TopK: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "[x y]", got[0].Metadata["tags"])
	assert.Equal(t, 3, got[0].Metadata["n"])
	assert.NotContains(t, got[0].Metadata, "nil")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Upsert(ctx, "g", []domain.VectorRecord{
		{ID: "a", Vector: []float32{1}},
		{ID: "b", Vector: []float32{1}},
	}))
	require.NoError(t, idx.Delete(ctx, "g", []string{"a"}))
	assert.Equal(t, 1, idx.Len("g"))

	require.NoError(t, idx.DeleteNamespace(ctx, "g"))
	assert.Equal(t, 0, idx.Len("g"))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, Cosine([]float32{1}, []float32{1, 1}))
}
