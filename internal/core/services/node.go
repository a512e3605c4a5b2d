package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
	"github.com/atlus-labs/atlus/internal/logger"
)

// Ensure NodeService implements the interface.
var _ driving.NodeService = (*NodeService)(nil)

// Search and semantic lookup limits.
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50

	semanticTopK      = 5
	semanticThreshold = 0.7
	semanticBodyChars = 2000
)

// NodeService reads, edits and navigates nodes.
type NodeService struct {
	store    driven.Store
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	linker   *Linker
	now      func() time.Time
}

// NewNodeService creates a node service.
func NewNodeService(store driven.Store, embedder driven.EmbeddingService, index driven.VectorIndex, linker *Linker) *NodeService {
	return &NodeService{store: store, embedder: embedder, index: index, linker: linker, now: time.Now}
}

// GetNode retrieves a node by ID.
func (s *NodeService) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	return s.store.GetNode(ctx, id)
}

// UpdateNode applies a partial update. A blank title keeps the current
// one. When the title of an indexed node changes, its vector and links
// are recomputed.
func (s *NodeService) UpdateNode(ctx context.Context, id string, update driving.NodeUpdate) (*domain.Node, error) {
	node, err := s.store.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}

	retitled := false
	if update.Title != nil {
		if title := domain.Truncate(strings.TrimSpace(*update.Title), domain.MaxTitleLength); title != "" && title != node.Title {
			node.Title = title
			retitled = true
		}
	}
	if update.Markdown != nil {
		node.StructuredContent = *update.Markdown
	}
	if update.Tags != nil {
		tags := make([]string, 0, len(update.Tags))
		for _, t := range update.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		node.Tags = tags
		if node.Metadata == nil {
			node.Metadata = map[string]any{}
		}
		node.Metadata["tags"] = tags
	}
	node.UpdatedAt = s.now()

	if err := s.store.SaveNodes(ctx, []domain.Node{*node}); err != nil {
		return nil, fmt.Errorf("save node: %w", err)
	}
	if retitled && node.EmbeddingID != "" {
		if err := s.reembed(ctx, node); err != nil {
			logger.Warn("node not re-indexed", "node", id, "err", err)
		}
	}
	return s.store.GetNode(ctx, id)
}

func (s *NodeService) reembed(ctx context.Context, node *domain.Node) error {
	payload := payloadOf(*node)
	vector, err := s.embedder.Embed(ctx, payload.EmbeddingText())
	if err != nil {
		return err
	}
	record := domain.VectorRecord{ID: node.ID, Vector: vector, Metadata: payload.VectorMetadata(node.GraphID, node.ID)}
	if err := s.index.Upsert(ctx, node.GraphID, []domain.VectorRecord{record}); err != nil {
		return err
	}
	_, err = s.linker.Link(ctx, node.GraphID, node.ID, vector)
	return err
}

// Related lists the node's neighbours: edge targets and sources first,
// then the related cache, then semantic matches not already listed.
// Semantic lookup is best effort and skipped for unindexed nodes.
func (s *NodeService) Related(ctx context.Context, nodeID string) ([]driving.RelatedNode, error) {
	node, err := s.store.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	outgoing, incoming, err := s.store.NodeRelationships(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("load relationships: %w", err)
	}

	ids := domain.MergeRelated(nodeID, node.RelatedNodeIDs, outgoing, incoming)
	neighbours, err := s.store.GetNodes(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load neighbours: %w", err)
	}

	related := make([]driving.RelatedNode, 0, len(neighbours)+semanticTopK)
	seen := map[string]struct{}{nodeID: {}}
	for _, n := range neighbours {
		seen[n.ID] = struct{}{}
		related = append(related, driving.RelatedNode{Node: n, Source: driving.RelationGraph})
	}

	if node.EmbeddingID == "" {
		return related, nil
	}
	semantic, err := s.semanticNeighbours(ctx, node)
	if err != nil {
		logger.Debug("semantic lookup skipped", "node", nodeID, "err", err)
		return related, nil
	}
	for _, n := range semantic {
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		related = append(related, driving.RelatedNode{Node: n, Source: driving.RelationSemantic})
	}
	return related, nil
}

func (s *NodeService) semanticNeighbours(ctx context.Context, node *domain.Node) ([]domain.Node, error) {
	body := node.StructuredContent
	if body == "" {
		body = node.RawText
	}
	vector, err := s.embedder.Embed(ctx, node.Title+"\n"+domain.Truncate(body, semanticBodyChars))
	if err != nil {
		return nil, err
	}
	matches, err := s.index.Query(ctx, node.GraphID, vector, domain.QueryOptions{
		TopK:       semanticTopK,
		Threshold:  semanticThreshold,
		ExcludeIDs: []string{node.ID},
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return s.store.GetNodes(ctx, ids)
}

// Backlinks lists nodes pointing at nodeID, through an edge or through
// their related cache, in creation order.
func (s *NodeService) Backlinks(ctx context.Context, nodeID string) ([]domain.Node, error) {
	node, err := s.store.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	_, incoming, err := s.store.NodeRelationships(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("load relationships: %w", err)
	}
	sources := make(map[string]struct{}, len(incoming))
	for _, r := range incoming {
		sources[r.SourceNodeID] = struct{}{}
	}

	nodes, err := s.store.ListNodes(ctx, node.GraphID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	backlinks := []domain.Node{}
	for _, n := range nodes {
		if n.ID == nodeID {
			continue
		}
		if _, ok := sources[n.ID]; ok || slices.Contains(n.RelatedNodeIDs, nodeID) {
			backlinks = append(backlinks, n)
		}
	}
	return backlinks, nil
}

// Search finds nodes of an owner's graphs whose title, summary or raw
// text contains query, ignoring case. The limit defaults to 20 and is
// capped at 50.
func (s *NodeService) Search(ctx context.Context, ownerID, query string, limit int) ([]domain.Node, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Node{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	graphs, err := s.store.ListGraphs(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	ids := make([]string, len(graphs))
	for i, g := range graphs {
		ids[i] = g.ID
	}
	return s.store.SearchNodes(ctx, ids, query, limit)
}
