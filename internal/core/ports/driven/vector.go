package driven

import (
	"context"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

// VectorIndex stores node embeddings partitioned by namespace.
// The namespace is always a graph ID; vectors never leak across namespaces.
type VectorIndex interface {
	// Upsert inserts or replaces records in the namespace.
	Upsert(ctx context.Context, namespace string, records []domain.VectorRecord) error

	// Query returns matches ranked by descending similarity, filtered
	// by opts (see domain.FilterMatches).
	Query(ctx context.Context, namespace string, vector []float32, opts domain.QueryOptions) ([]domain.VectorMatch, error)

	// Delete removes the records with the given IDs from the namespace.
	Delete(ctx context.Context, namespace string, ids []string) error

	// DeleteNamespace removes every record of the namespace.
	DeleteNamespace(ctx context.Context, namespace string) error

	// Close releases resources.
	Close() error
}
