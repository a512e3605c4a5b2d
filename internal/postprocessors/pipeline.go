// Package postprocessors turns extracted document text into chunks.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
)

// Pipeline runs processors in order and numbers the resulting chunks.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline returns a pipeline over processors.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Process chunks doc. Position is reassigned after the last step so it
// always matches slice order.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, step := range p.processors {
		out, err := step.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("postprocessor %s: %w", step.Name(), err)
		}
		chunks = out
	}

	for i := range chunks {
		chunks[i].Position = i
	}
	return chunks, nil
}

// Len reports the number of steps.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
