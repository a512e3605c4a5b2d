package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
	"github.com/atlus-labs/atlus/internal/logger"
)

// Ensure GraphService implements the interface.
var _ driving.GraphService = (*GraphService)(nil)

// maxGraphName bounds graph names.
const maxGraphName = 255

// GraphService manages graph lifecycle and presentation.
type GraphService struct {
	store driven.Store
	index driven.VectorIndex
	now   func() time.Time
}

// NewGraphService creates a graph service.
func NewGraphService(store driven.Store, index driven.VectorIndex) *GraphService {
	return &GraphService{store: store, index: index, now: time.Now}
}

// CreateGraph creates a graph. The badge defaults to Notes.
func (s *GraphService) CreateGraph(ctx context.Context, input driving.CreateGraphInput) (*domain.Graph, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "required"}
	}
	if len(name) > maxGraphName {
		return nil, &domain.ValidationError{Field: "name", Reason: fmt.Sprintf("at most %d characters", maxGraphName)}
	}
	badge := input.Badge
	if badge == "" {
		badge = domain.BadgeNotes
	}
	if !badge.IsValid() {
		return nil, &domain.ValidationError{Field: "badge", Reason: fmt.Sprintf("must be one of %s, %s, %s", domain.BadgeNotes, domain.BadgeTextbook, domain.BadgeCompare)}
	}

	now := s.now()
	graph := &domain.Graph{
		ID:        uuid.NewString(),
		Name:      name,
		Badge:     badge,
		OwnerID:   input.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveGraph(ctx, graph); err != nil {
		return nil, fmt.Errorf("save graph: %w", err)
	}
	logger.Info("graph created", "graph", graph.ID, "name", graph.Name, "badge", graph.Badge)

	if input.Seed {
		if _, err := s.EnsureSeedNodes(ctx, graph.ID); err != nil {
			return nil, err
		}
		return s.store.GetGraph(ctx, graph.ID)
	}
	return graph, nil
}

// GetGraph retrieves a graph by ID.
func (s *GraphService) GetGraph(ctx context.Context, id string) (*domain.Graph, error) {
	return s.store.GetGraph(ctx, id)
}

// ListGraphs returns an owner's graphs.
func (s *GraphService) ListGraphs(ctx context.Context, ownerID string) ([]domain.Graph, error) {
	return s.store.ListGraphs(ctx, ownerID)
}

// DeleteGraph removes the graph with everything it owns, then drops its
// vector namespace. A vector store failure leaves orphaned vectors that
// no node references, so it is logged rather than returned.
func (s *GraphService) DeleteGraph(ctx context.Context, id string) error {
	if err := s.store.DeleteGraph(ctx, id); err != nil {
		return err
	}
	if err := s.index.DeleteNamespace(ctx, id); err != nil {
		logger.Warn("vector namespace not removed", "graph", id, "err", err)
	}
	logger.Info("graph deleted", "graph", id)
	return nil
}

// View returns the graph's nodes in creation order with merged edges.
func (s *GraphService) View(ctx context.Context, graphID string) (*domain.GraphView, error) {
	graph, err := s.store.GetGraph(ctx, graphID)
	if err != nil {
		return nil, err
	}
	nodes, err := s.store.ListNodes(ctx, graphID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	rels, err := s.store.ListRelationships(ctx, graphID)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	return &domain.GraphView{Graph: *graph, Nodes: nodes, Edges: domain.MergeEdges(nodes, rels)}, nil
}

// GlobalView merges every graph of an owner into one view. The returned
// Graph carries only the owner.
func (s *GraphService) GlobalView(ctx context.Context, ownerID string) (*domain.GraphView, error) {
	graphs, err := s.store.ListGraphs(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}

	var nodes []domain.Node
	var rels []domain.Relationship
	for _, g := range graphs {
		n, err := s.store.ListNodes(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("list nodes of %s: %w", g.ID, err)
		}
		r, err := s.store.ListRelationships(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("list relationships of %s: %w", g.ID, err)
		}
		nodes = append(nodes, n...)
		rels = append(rels, r...)
	}
	if nodes == nil {
		nodes = []domain.Node{}
	}
	return &domain.GraphView{
		Graph: domain.Graph{Name: "All graphs", OwnerID: ownerID},
		Nodes: nodes,
		Edges: domain.MergeEdges(nodes, rels),
	}, nil
}

// requireGraph is shared by services that operate inside one graph.
func requireGraph(ctx context.Context, store driven.GraphStore, graphID string) (*domain.Graph, error) {
	if strings.TrimSpace(graphID) == "" {
		return nil, &domain.ValidationError{Field: "graph_id", Reason: "required"}
	}
	graph, err := store.GetGraph(ctx, graphID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("graph %s: %w", graphID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load graph: %w", err)
	}
	return graph, nil
}
