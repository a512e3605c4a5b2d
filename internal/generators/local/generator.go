// Package local derives node content from text without any network call.
package local

import (
	"context"
	"strings"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.NodeGenerator = (*Generator)(nil)

const (
	maxInput   = 8000
	maxTitle   = 200
	maxSummary = 300
	untitled   = "Untitled"
)

// Generator is the degraded NodeGenerator. It never fails.
type Generator struct{}

// New creates a local generator.
func New() *Generator {
	return &Generator{}
}

// Mode returns "local".
func (g *Generator) Mode() string {
	return "local"
}

// Generate uses the section title, or the first non-empty line, as title
// and the first non-empty line as summary. Concepts and related topics
// are always empty.
func (g *Generator) Generate(_ context.Context, text, sectionTitle string) (domain.NodeContent, error) {
	text = domain.Truncate(strings.TrimSpace(text), maxInput)

	var first string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			first = line
			break
		}
	}

	title := sectionTitle
	if title == "" {
		title = domain.Truncate(first, maxTitle)
	}
	if title == "" {
		title = untitled
	}

	summary := domain.Truncate(first, maxSummary)
	if summary == "" {
		summary = domain.Truncate(text, maxSummary)
	}

	return domain.NodeContent{
		Title:         title,
		Summary:       summary,
		Concepts:      []string{},
		RelatedTopics: []string{},
	}, nil
}

// StructureMarkdown returns the OCR text trimmed, unchanged otherwise.
func (g *Generator) StructureMarkdown(_ context.Context, ocrText string) (string, error) {
	return strings.TrimSpace(ocrText), nil
}
