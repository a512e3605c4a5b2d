package driving

import (
	"context"

	"github.com/atlus-labs/atlus/internal/core/domain"
)

// GraphService manages graphs and their presentation.
type GraphService interface {
	// CreateGraph creates a graph, seeding welcome nodes when requested.
	CreateGraph(ctx context.Context, input CreateGraphInput) (*domain.Graph, error)

	// GetGraph retrieves a graph by ID.
	GetGraph(ctx context.Context, id string) (*domain.Graph, error)

	// ListGraphs returns an owner's graphs.
	ListGraphs(ctx context.Context, ownerID string) ([]domain.Graph, error)

	// DeleteGraph removes a graph, its nodes and its vector namespace.
	DeleteGraph(ctx context.Context, id string) error

	// EnsureSeedNodes creates the welcome nodes once per graph and
	// returns how many were created.
	EnsureSeedNodes(ctx context.Context, graphID string) (int, error)

	// View returns a graph's nodes with merged, deduplicated edges.
	View(ctx context.Context, graphID string) (*domain.GraphView, error)

	// GlobalView merges the views of every graph an owner has.
	GlobalView(ctx context.Context, ownerID string) (*domain.GraphView, error)
}

// CreateGraphInput describes a new graph.
type CreateGraphInput struct {
	Name    string
	Badge   domain.Badge
	OwnerID string
	Seed    bool
}

// NodeService reads and edits nodes.
type NodeService interface {
	// GetNode retrieves a node by ID.
	GetNode(ctx context.Context, id string) (*domain.Node, error)

	// UpdateNode applies a partial update.
	UpdateNode(ctx context.Context, id string, update NodeUpdate) (*domain.Node, error)

	// Related lists neighbours through edges, the related cache, and
	// semantic similarity.
	Related(ctx context.Context, nodeID string) ([]RelatedNode, error)

	// Backlinks lists nodes with an edge pointing at nodeID.
	Backlinks(ctx context.Context, nodeID string) ([]domain.Node, error)

	// Search finds nodes of an owner's graphs by substring.
	Search(ctx context.Context, ownerID, query string, limit int) ([]domain.Node, error)
}

// NodeUpdate holds optional node fields. Nil fields are left unchanged.
type NodeUpdate struct {
	Title    *string
	Markdown *string
	Tags     []string
}

// Relation sources reported by Related.
const (
	RelationGraph    = "graph"
	RelationSemantic = "semantic"
)

// RelatedNode is one neighbour and how it was found.
type RelatedNode struct {
	Node   domain.Node
	Source string
}
