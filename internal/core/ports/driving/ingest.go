package driving

import (
	"context"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

// IngestionService turns documents into linked nodes.
type IngestionService interface {
	// Ingest processes every file of the request. Only request validation
	// returns an error; per-file failures are listed in the result.
	Ingest(ctx context.Context, req domain.IngestRequest) (domain.IngestResult, error)

	// GenerateFromChunks creates one node per pre-chunked span of text.
	GenerateFromChunks(ctx context.Context, graphID string, chunks []ChunkInput) (domain.IngestResult, error)

	// GenerateFromMarkdown creates a single handwritten node from OCR markdown.
	GenerateFromMarkdown(ctx context.Context, graphID, markdown, sourceFileID string) (domain.IngestResult, error)

	// GenerateFromOCR structures raw OCR text as markdown, then creates a
	// single handwritten node from it.
	GenerateFromOCR(ctx context.Context, graphID, ocrText, sourceFileID string) (domain.IngestResult, error)

	// AddNote creates a user-authored note, indexes it and links it.
	AddNote(ctx context.Context, input NoteInput) (*domain.Node, error)

	// Reindex re-embeds every node of a graph from the relational store,
	// upserts the vectors and recomputes similarity links.
	Reindex(ctx context.Context, graphID string) (domain.IngestResult, error)

	// Status returns the progress of requests currently running.
	Status() []IngestStatus
}

// ChunkInput is a span of text supplied by a caller that chunked it already.
type ChunkInput struct {
	Text         string
	SectionTitle string
	SourceFileID string
}

// NoteInput describes a user-authored note.
type NoteInput struct {
	GraphID  string
	Title    string
	Markdown string
	Tags     []string
}

// IngestStatus is the live state of one running ingestion request.
type IngestStatus struct {
	// RequestID identifies the request.
	RequestID string

	// GraphID is the target graph.
	GraphID string

	// Files lists each file's current stage in input order.
	Files []domain.FileStatus
}
