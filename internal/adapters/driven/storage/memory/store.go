package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Store = (*Store)(nil)

type relKey struct {
	source, target string
}

// Store is an in-memory implementation of driven.Store.
type Store struct {
	mu            sync.RWMutex
	graphs        map[string]domain.Graph
	files         map[string]domain.SourceFile
	nodes         map[string]domain.Node
	order         map[string]int64
	seq           int64
	relationships map[relKey]domain.Relationship
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		graphs:        make(map[string]domain.Graph),
		files:         make(map[string]domain.SourceFile),
		nodes:         make(map[string]domain.Node),
		order:         make(map[string]int64),
		relationships: make(map[relKey]domain.Relationship),
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Adjacency returns the link writer for the given mode.
func (s *Store) Adjacency(mode domain.AdjacencyMode) driven.AdjacencyStore {
	return &adjacency{store: s, edges: mode != domain.AdjacencyList}
}

// SaveGraph stores or updates a graph.
func (s *Store) SaveGraph(_ context.Context, graph *domain.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[graph.ID] = *graph
	return nil
}

// GetGraph retrieves a graph by ID.
func (s *Store) GetGraph(_ context.Context, id string) (*domain.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.graphs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &g, nil
}

// ListGraphs returns the graphs of an owner, newest first.
func (s *Store) ListGraphs(_ context.Context, ownerID string) ([]domain.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Graph{}
	for _, g := range s.graphs {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteGraph removes a graph with its source files, nodes and relationships.
func (s *Store) DeleteGraph(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.graphs[id]; !ok {
		return domain.ErrNotFound
	}
	for k, r := range s.relationships {
		if r.GraphID == id {
			delete(s.relationships, k)
		}
	}
	for nid, n := range s.nodes {
		if n.GraphID == id {
			delete(s.nodes, nid)
			delete(s.order, nid)
		}
	}
	for fid, f := range s.files {
		if f.GraphID == id {
			delete(s.files, fid)
		}
	}
	delete(s.graphs, id)
	return nil
}

// SaveSourceFile stores a source file record.
func (s *Store) SaveSourceFile(_ context.Context, file *domain.SourceFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[file.ID] = *file
	return nil
}

// DeleteSourceFile removes a source file record.
func (s *Store) DeleteSourceFile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, id)
	return nil
}

// ListSourceFiles returns the source files of a graph, oldest first.
func (s *Store) ListSourceFiles(_ context.Context, graphID string) ([]domain.SourceFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.SourceFile{}
	for _, f := range s.files {
		if f.GraphID == graphID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SaveNodes stores or updates nodes. New nodes take the next creation slot.
func (s *Store) SaveNodes(_ context.Context, nodes []domain.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range nodes {
		if _, ok := s.order[n.ID]; !ok {
			s.seq++
			s.order[n.ID] = s.seq
		}
		s.nodes[n.ID] = cloneNode(n)
	}
	return nil
}

// GetNode retrieves a node by ID.
func (s *Store) GetNode(_ context.Context, id string) (*domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	n = cloneNode(n)
	return &n, nil
}

// GetNodes retrieves the nodes with the given IDs in the order given.
func (s *Store) GetNodes(_ context.Context, ids []string) ([]domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Node, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if n, ok := s.nodes[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, cloneNode(n))
		}
	}
	return out, nil
}

// ListNodes returns every node of a graph in creation order.
func (s *Store) ListNodes(_ context.Context, graphID string) ([]domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedNodes(func(n *domain.Node) bool { return n.GraphID == graphID }, false), nil
}

// DeleteNodes removes nodes and any relationships touching them.
func (s *Store) DeleteNodes(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
		delete(s.nodes, id)
		delete(s.order, id)
	}
	for k := range s.relationships {
		if gone[k.source] || gone[k.target] {
			delete(s.relationships, k)
		}
	}
	return nil
}

// SearchNodes matches query case-insensitively against title, summary and
// raw text, newest first.
func (s *Store) SearchNodes(_ context.Context, graphIDs []string, query string, limit int) ([]domain.Node, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if len(graphIDs) == 0 || query == "" {
		return []domain.Node{}, nil
	}
	scope := make(map[string]bool, len(graphIDs))
	for _, id := range graphIDs {
		scope[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.sortedNodes(func(n *domain.Node) bool {
		return scope[n.GraphID] && (strings.Contains(strings.ToLower(n.Title), query) ||
			strings.Contains(strings.ToLower(n.Summary), query) ||
			strings.Contains(strings.ToLower(n.RawText), query))
	}, true)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveRelationship inserts or replaces the edge for its (source, target) pair.
func (s *Store) SaveRelationship(_ context.Context, rel *domain.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := relKey{rel.SourceNodeID, rel.TargetNodeID}
	r := *rel
	if existing, ok := s.relationships[k]; ok {
		r.ID = existing.ID
		r.CreatedAt = existing.CreatedAt
	}
	s.relationships[k] = r
	return nil
}

// ListRelationships returns every edge of the graph.
func (s *Store) ListRelationships(_ context.Context, graphID string) ([]domain.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterRelationships(func(r *domain.Relationship) bool { return r.GraphID == graphID }), nil
}

// NodeRelationships returns a node's outgoing and incoming edges.
func (s *Store) NodeRelationships(_ context.Context, nodeID string) (outgoing, incoming []domain.Relationship, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	outgoing = s.filterRelationships(func(r *domain.Relationship) bool { return r.SourceNodeID == nodeID })
	incoming = s.filterRelationships(func(r *domain.Relationship) bool { return r.TargetNodeID == nodeID })
	return outgoing, incoming, nil
}

func (s *Store) sortedNodes(keep func(*domain.Node) bool, newestFirst bool) []domain.Node {
	out := []domain.Node{}
	for _, n := range s.nodes {
		if keep(&n) {
			out = append(out, cloneNode(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return s.order[out[i].ID] > s.order[out[j].ID]
		}
		return s.order[out[i].ID] < s.order[out[j].ID]
	})
	return out
}

func (s *Store) filterRelationships(keep func(*domain.Relationship) bool) []domain.Relationship {
	out := []domain.Relationship{}
	for _, r := range s.relationships {
		if keep(&r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// adjacency writes similarity links under the store lock.
type adjacency struct {
	store *Store
	edges bool
}

func (a *adjacency) Mode() domain.AdjacencyMode {
	if a.edges {
		return domain.AdjacencyEdges
	}
	return domain.AdjacencyList
}

func (a *adjacency) ReplaceLinks(_ context.Context, nodeID string, links []domain.Link) ([]domain.Link, error) {
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[nodeID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	kept := []domain.Link{}
	seen := map[string]bool{nodeID: true}
	for _, l := range links {
		target, ok := s.nodes[l.TargetID]
		if !ok || seen[l.TargetID] || target.GraphID != node.GraphID {
			continue
		}
		seen[l.TargetID] = true
		kept = append(kept, l)
	}

	now := time.Now()
	if a.edges {
		for k, r := range s.relationships {
			if k.source == nodeID && r.EdgeType == domain.EdgeTypeSimilar {
				delete(s.relationships, k)
			}
		}
		for _, l := range kept {
			k := relKey{nodeID, l.TargetID}
			if _, exists := s.relationships[k]; exists {
				continue
			}
			score := l.Score
			s.relationships[k] = domain.Relationship{
				ID:           uuid.NewString(),
				GraphID:      node.GraphID,
				SourceNodeID: nodeID,
				TargetNodeID: l.TargetID,
				EdgeType:     domain.EdgeTypeSimilar,
				Weight:       &score,
				CreatedAt:    now,
			}
		}
	}

	node.RelatedNodeIDs = domain.LinkIDs(kept)
	node.UpdatedAt = now
	s.nodes[nodeID] = node
	return kept, nil
}

// cloneNode copies the slices and map so callers cannot mutate stored state.
func cloneNode(n domain.Node) domain.Node {
	n.Concepts = cloneStrings(n.Concepts)
	n.RelatedTopics = cloneStrings(n.RelatedTopics)
	n.Tags = cloneStrings(n.Tags)
	n.RelatedNodeIDs = cloneStrings(n.RelatedNodeIDs)
	meta := make(map[string]any, len(n.Metadata))
	for k, v := range n.Metadata {
		meta[k] = v
	}
	n.Metadata = meta
	return n
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
