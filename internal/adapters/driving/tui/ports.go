// Package tui provides an interactive terminal browser for graphs and
// notes. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI reads from.
type Ports struct {
	// Graph lists and renders graphs.
	Graph driving.GraphService

	// Node loads notes, their neighbours and search results.
	Node driving.NodeService

	// OwnerID scopes graph listing and search.
	OwnerID string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Graph == nil {
		return ErrMissingGraphService
	}
	if p.Node == nil {
		return ErrMissingNodeService
	}
	return nil
}
