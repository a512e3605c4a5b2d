package mcp

import (
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	Graph     driving.GraphService
	Node      driving.NodeService
	Ingestion driving.IngestionService

	// OwnerID scopes graph listing and search.
	OwnerID string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Graph == nil:
		return ErrMissingGraphService
	case p.Node == nil:
		return ErrMissingNodeService
	case p.Ingestion == nil:
		return ErrMissingIngestionService
	}
	return nil
}
