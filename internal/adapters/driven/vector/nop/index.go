// Package nop provides the degraded VectorIndex used when no vector
// backend is configured.
package nop

import (
	"context"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index accepts every call and stores nothing.
type Index struct{}

// New creates a no-op index.
func New() *Index {
	return &Index{}
}

// Upsert does nothing.
func (i *Index) Upsert(context.Context, string, []domain.VectorRecord) error { return nil }

// Query always returns an empty result.
func (i *Index) Query(context.Context, string, []float32, domain.QueryOptions) ([]domain.VectorMatch, error) {
	return []domain.VectorMatch{}, nil
}

// Delete does nothing.
func (i *Index) Delete(context.Context, string, []string) error { return nil }

// DeleteNamespace does nothing.
func (i *Index) DeleteNamespace(context.Context, string) error { return nil }

// Close does nothing.
func (i *Index) Close() error { return nil }
