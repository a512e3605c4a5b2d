package driven

import (
	"context"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

// GraphStore persists graphs.
type GraphStore interface {
	// SaveGraph stores or updates a graph.
	SaveGraph(ctx context.Context, graph *domain.Graph) error

	// GetGraph retrieves a graph by ID.
	GetGraph(ctx context.Context, id string) (*domain.Graph, error)

	// ListGraphs returns the graphs of an owner, newest first.
	ListGraphs(ctx context.Context, ownerID string) ([]domain.Graph, error)

	// DeleteGraph removes a graph with its source files, nodes and relationships.
	DeleteGraph(ctx context.Context, id string) error
}

// SourceFileStore persists uploaded file records.
type SourceFileStore interface {
	SaveSourceFile(ctx context.Context, file *domain.SourceFile) error
	ListSourceFiles(ctx context.Context, graphID string) ([]domain.SourceFile, error)

	// DeleteSourceFile removes a source file record. Unknown IDs are not an error.
	DeleteSourceFile(ctx context.Context, id string) error
}

// NodeStore persists nodes.
type NodeStore interface {
	// SaveNodes stores or updates nodes in a single transaction.
	SaveNodes(ctx context.Context, nodes []domain.Node) error

	// GetNode retrieves a node by ID.
	GetNode(ctx context.Context, id string) (*domain.Node, error)

	// GetNodes retrieves the nodes with the given IDs. Unknown IDs are skipped.
	GetNodes(ctx context.Context, ids []string) ([]domain.Node, error)

	// ListNodes returns every node of a graph in creation order.
	ListNodes(ctx context.Context, graphID string) ([]domain.Node, error)

	// DeleteNodes removes nodes and any relationships touching them.
	DeleteNodes(ctx context.Context, ids []string) error

	// SearchNodes matches query case-insensitively against title,
	// summary and raw text of nodes in the given graphs.
	SearchNodes(ctx context.Context, graphIDs []string, query string, limit int) ([]domain.Node, error)
}

// RelationshipStore reads and writes explicit edges.
type RelationshipStore interface {
	// SaveRelationship inserts or replaces the edge for its (source, target) pair.
	SaveRelationship(ctx context.Context, rel *domain.Relationship) error

	// ListRelationships returns every edge whose source is in the graph.
	ListRelationships(ctx context.Context, graphID string) ([]domain.Relationship, error)

	// NodeRelationships returns a node's outgoing and incoming edges.
	NodeRelationships(ctx context.Context, nodeID string) (outgoing, incoming []domain.Relationship, err error)
}

// AdjacencyStore is the single write path for similarity links.
type AdjacencyStore interface {
	// ReplaceLinks overwrites the node's previous similarity links and
	// returns the links written. Targets that are not nodes of the same
	// graph are dropped. Calling it twice with the same links leaves the
	// same state.
	ReplaceLinks(ctx context.Context, nodeID string, links []domain.Link) ([]domain.Link, error)

	// Mode reports which representation the store writes.
	Mode() domain.AdjacencyMode
}

// Store bundles the relational stores a backend provides.
type Store interface {
	GraphStore
	SourceFileStore
	NodeStore
	RelationshipStore

	// Adjacency returns the link writer for the given mode.
	Adjacency(mode domain.AdjacencyMode) AdjacencyStore

	// Close releases the database handle.
	Close() error
}
