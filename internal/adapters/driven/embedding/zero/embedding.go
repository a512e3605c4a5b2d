// Package zero provides the degraded embedding service used when no
// embedding provider is configured. Every vector is all zeros.
package zero

import (
	"context"

	"github.com/atlus-labs/atlus/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions matches text-embedding-3-small.
const DefaultDimensions = 1536

// EmbeddingService returns zero vectors of a fixed size.
type EmbeddingService struct {
	dimensions int
}

// New creates a zero embedder. Non-positive dimensions fall back to 1536.
func New(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed returns a zero vector.
func (s *EmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, s.dimensions), nil
}

// EmbedBatch returns one zero vector per text.
func (s *EmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, s.dimensions)
	}
	return out, nil
}

// Dimensions returns the vector size.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns "zero".
func (s *EmbeddingService) ModelName() string { return "zero" }

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error { return nil }

// Close releases resources.
func (s *EmbeddingService) Close() error { return nil }
