package driven

import (
	"context"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

// PostProcessor is one step between extracted text and the chunks that
// become notes.
type PostProcessor interface {
	// Name identifies the processor in errors and in config keys.
	Name() string

	// Process returns the chunks after this step. The first step (the
	// chunker) receives nil chunks.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline turns a document into its final, positioned chunks.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
