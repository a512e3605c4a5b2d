package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/logger"
)

// seedNote is one welcome note of a new graph.
type seedNote struct {
	title    string
	markdown string
}

var seedNotes = []seedNote{
	{
		title: "Welcome to your Brain",
		markdown: `# Welcome to your Brain

This is your first note. You can write in **Markdown** and link ideas across notes.

- Use the **Graph** tab to see how notes connect.
- Add new notes with **+ New Note**.
- Search and filter in the sidebar.`,
	},
	{
		title: "How to use Notes + Graph",
		markdown: `# How to use Notes + Graph

## Notes
- Edit in the center panel; use **Edit** / **Preview** / **Split**.
- Backlinks and related notes appear on the right.

## Graph
- Click a node to open its note.
- Filter by tag or use "Local graph" to focus one note and its neighbors.`,
	},
	{
		title: "Example links and tags",
		markdown: "# Example links and tags\n\n" +
			"Add `tags` to notes (e.g. `#concept`, `#todo`) and filter by them in the sidebar.\n\n" +
			"You can reference other notes by title; the graph will show relationships as you add more content.",
	},
}

var seedTags = []string{"seed", "example"}

// EnsureSeedNodes creates the welcome notes of a graph once. Each note
// points at the next through its related IDs. It returns zero when the
// graph was already seeded or already holds a note with a seed title.
func (s *GraphService) EnsureSeedNodes(ctx context.Context, graphID string) (int, error) {
	graph, err := requireGraph(ctx, s.store, graphID)
	if err != nil {
		return 0, err
	}
	if graph.Seeded {
		return 0, nil
	}

	existing, err := s.store.ListNodes(ctx, graphID)
	if err != nil {
		return 0, fmt.Errorf("list nodes: %w", err)
	}
	titles := make(map[string]struct{}, len(seedNotes))
	for _, n := range seedNotes {
		titles[n.title] = struct{}{}
	}
	for _, n := range existing {
		if _, ok := titles[n.Title]; ok {
			return 0, s.markSeeded(ctx, graph)
		}
	}

	now := s.now()
	nodes := make([]domain.Node, len(seedNotes))
	for i, note := range seedNotes {
		nodes[i] = domain.Node{
			ID:                uuid.NewString(),
			GraphID:           graphID,
			Title:             note.title,
			RawText:           note.markdown,
			StructuredContent: note.markdown,
			Concepts:          []string{},
			RelatedTopics:     []string{},
			Tags:              append([]string{}, seedTags...),
			NodeType:          domain.NodeTypeSeed,
			RelatedNodeIDs:    []string{},
			Metadata:          map[string]any{"tags": append([]string{}, seedTags...)},
			CreatedAt:         now,
			UpdatedAt:         now,
		}
	}
	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].RelatedNodeIDs = []string{nodes[i+1].ID}
	}

	if err := s.store.SaveNodes(ctx, nodes); err != nil {
		return 0, fmt.Errorf("save seed nodes: %w", err)
	}
	if err := s.markSeeded(ctx, graph); err != nil {
		return 0, err
	}
	logger.Debug("seed nodes created", "graph", graphID, "count", len(nodes))
	return len(nodes), nil
}

func (s *GraphService) markSeeded(ctx context.Context, graph *domain.Graph) error {
	graph.Seeded = true
	graph.UpdatedAt = s.now()
	if err := s.store.SaveGraph(ctx, graph); err != nil {
		return fmt.Errorf("mark graph seeded: %w", err)
	}
	return nil
}
