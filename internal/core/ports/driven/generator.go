package driven

import (
	"context"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

// NodeGenerator turns a span of text into structured node content.
type NodeGenerator interface {
	// Generate derives title, summary, concepts and related topics from text.
	// sectionTitle is empty when the text has no detected section.
	Generate(ctx context.Context, text, sectionTitle string) (domain.NodeContent, error)

	// StructureMarkdown turns raw OCR text of handwritten notes into
	// clean markdown.
	StructureMarkdown(ctx context.Context, ocrText string) (string, error)

	// Mode names the strategy, "llm" or "local".
	Mode() string
}
