package services

import (
	"context"
	"fmt"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
)

// Linker records similarity links for newly embedded nodes.
type Linker struct {
	index     driven.VectorIndex
	adjacency driven.AdjacencyStore
	topK      int
	threshold float64
}

// NewLinker creates a linker writing through adjacency. A non-positive
// TopK falls back to domain.DefaultLinkTopK.
func NewLinker(index driven.VectorIndex, adjacency driven.AdjacencyStore, settings domain.LinkerSettings) *Linker {
	if settings.TopK <= 0 {
		settings.TopK = domain.DefaultLinkTopK
	}
	return &Linker{
		index:     index,
		adjacency: adjacency,
		topK:      settings.TopK,
		threshold: settings.Threshold,
	}
}

// Link queries the graph's namespace for neighbours of vector and
// replaces the node's similarity links with them. It returns the IDs
// linked, best first. Running it again with the same index state gives
// the same result.
func (l *Linker) Link(ctx context.Context, graphID, nodeID string, vector []float32) ([]string, error) {
	matches, err := l.index.Query(ctx, graphID, vector, domain.QueryOptions{
		TopK:       l.topK,
		Threshold:  l.threshold,
		ExcludeIDs: []string{nodeID},
	})
	if err != nil {
		return nil, fmt.Errorf("query neighbours of %s: %w", nodeID, err)
	}

	links := make([]domain.Link, len(matches))
	for i, m := range matches {
		links[i] = domain.Link{TargetID: m.ID, Score: m.Score}
	}

	written, err := l.adjacency.ReplaceLinks(ctx, nodeID, links)
	if err != nil {
		return nil, fmt.Errorf("write links of %s: %w", nodeID, err)
	}
	return domain.LinkIDs(written), nil
}

// TopK returns the maximum number of links per node.
func (l *Linker) TopK() int { return l.topK }

// Threshold returns the minimum similarity score of a link.
func (l *Linker) Threshold() float64 { return l.threshold }
