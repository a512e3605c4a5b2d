// Package tuitest holds service fakes shared by the TUI tests.
package tuitest

import (
	"context"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
)

// MockGraphService implements driving.GraphService. Unset funcs return
// zero values.
type MockGraphService struct {
	ListGraphsFunc func(ctx context.Context, ownerID string) ([]domain.Graph, error)
	ViewFunc       func(ctx context.Context, graphID string) (*domain.GraphView, error)
}

func (m *MockGraphService) CreateGraph(context.Context, driving.CreateGraphInput) (*domain.Graph, error) {
	return nil, nil
}

func (m *MockGraphService) GetGraph(context.Context, string) (*domain.Graph, error) {
	return nil, nil
}

func (m *MockGraphService) ListGraphs(ctx context.Context, ownerID string) ([]domain.Graph, error) {
	if m.ListGraphsFunc != nil {
		return m.ListGraphsFunc(ctx, ownerID)
	}
	return []domain.Graph{}, nil
}

func (m *MockGraphService) DeleteGraph(context.Context, string) error {
	return nil
}

func (m *MockGraphService) EnsureSeedNodes(context.Context, string) (int, error) {
	return 0, nil
}

func (m *MockGraphService) View(ctx context.Context, graphID string) (*domain.GraphView, error) {
	if m.ViewFunc != nil {
		return m.ViewFunc(ctx, graphID)
	}
	return &domain.GraphView{}, nil
}

func (m *MockGraphService) GlobalView(context.Context, string) (*domain.GraphView, error) {
	return &domain.GraphView{}, nil
}

// MockNodeService implements driving.NodeService. Unset funcs return
// zero values.
type MockNodeService struct {
	GetNodeFunc func(ctx context.Context, id string) (*domain.Node, error)
	RelatedFunc func(ctx context.Context, nodeID string) ([]driving.RelatedNode, error)
	SearchFunc  func(ctx context.Context, ownerID, query string, limit int) ([]domain.Node, error)
}

func (m *MockNodeService) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	if m.GetNodeFunc != nil {
		return m.GetNodeFunc(ctx, id)
	}
	return &domain.Node{ID: id}, nil
}

func (m *MockNodeService) UpdateNode(context.Context, string, driving.NodeUpdate) (*domain.Node, error) {
	return nil, nil
}

func (m *MockNodeService) Related(ctx context.Context, nodeID string) ([]driving.RelatedNode, error) {
	if m.RelatedFunc != nil {
		return m.RelatedFunc(ctx, nodeID)
	}
	return nil, nil
}

func (m *MockNodeService) Backlinks(context.Context, string) ([]domain.Node, error) {
	return nil, nil
}

func (m *MockNodeService) Search(ctx context.Context, ownerID, query string, limit int) ([]domain.Node, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, ownerID, query, limit)
	}
	return []domain.Node{}, nil
}
