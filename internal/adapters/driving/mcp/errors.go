// Package mcp exposes Atlus graphs to AI assistants over the Model
// Context Protocol. Tools ingest text and navigate nodes; resources
// list graphs and render node markdown.
package mcp

import "errors"

// Errors returned by NewServer for missing ports.
var (
	ErrMissingGraphService     = errors.New("mcp: graph service is required")
	ErrMissingNodeService      = errors.New("mcp: node service is required")
	ErrMissingIngestionService = errors.New("mcp: ingestion service is required")
)
