package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vectormemory "github.com/atlus-labs/atlus/internal/adapters/driven/vector/memory"
	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driving"
)

func strPtr(s string) *string { return &s }

func TestUpdateNode(t *testing.T) {
	h := newHarness(t, withEmbedder(&constEmbedder{}), withIndex(vectormemory.New()))
	note, err := h.ingest.AddNote(context.Background(), driving.NoteInput{GraphID: h.graph.ID, Title: "Draft", Markdown: "old"})
	require.NoError(t, err)

	updated, err := h.nodes.UpdateNode(context.Background(), note.ID, driving.NodeUpdate{
		Title:    strPtr("  Final  "),
		Markdown: strPtr("new body"),
		Tags:     []string{" bio ", "", "cells"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, "new body", updated.StructuredContent)
	assert.Equal(t, "old", updated.RawText)
	assert.Equal(t, []string{"bio", "cells"}, updated.Tags)

	kept, err := h.nodes.UpdateNode(context.Background(), note.ID, driving.NodeUpdate{Title: strPtr("   ")})
	require.NoError(t, err)
	assert.Equal(t, "Final", kept.Title)
	assert.Equal(t, []string{"bio", "cells"}, kept.Tags)

	_, err = h.nodes.UpdateNode(context.Background(), "missing", driving.NodeUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateNode_RetitleRelinks(t *testing.T) {
	h := newHarness(t, withEmbedder(&constEmbedder{}), withIndex(vectormemory.New()))
	first, err := h.ingest.AddNote(context.Background(), driving.NoteInput{GraphID: h.graph.ID, Title: "First"})
	require.NoError(t, err)
	second, err := h.ingest.AddNote(context.Background(), driving.NoteInput{GraphID: h.graph.ID, Title: "Second"})
	require.NoError(t, err)
	require.Empty(t, first.RelatedNodeIDs)

	updated, err := h.nodes.UpdateNode(context.Background(), first.ID, driving.NodeUpdate{Title: strPtr("First, renamed")})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, updated.RelatedNodeIDs)
}

func TestRelated(t *testing.T) {
	h := newHarness(t, withEmbedder(&constEmbedder{}), withIndex(vectormemory.New()), withAdjacency(domain.AdjacencyList))
	ctx := context.Background()

	a, err := h.ingest.AddNote(ctx, driving.NoteInput{GraphID: h.graph.ID, Title: "A"})
	require.NoError(t, err)
	b, err := h.ingest.AddNote(ctx, driving.NoteInput{GraphID: h.graph.ID, Title: "B"})
	require.NoError(t, err)
	c, err := h.ingest.AddNote(ctx, driving.NoteInput{GraphID: h.graph.ID, Title: "C"})
	require.NoError(t, err)

	// a's only edge is a self loop, so its neighbours come from the index.
	require.NoError(t, h.store.SaveRelationship(ctx, &domain.Relationship{
		ID: "r1", GraphID: h.graph.ID, SourceNodeID: a.ID, TargetNodeID: a.ID, EdgeType: domain.EdgeTypeManual,
	}))

	related, err := h.nodes.Related(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, related, 2)
	assert.Equal(t, b.ID, related[0].Node.ID)
	assert.Equal(t, driving.RelationSemantic, related[0].Source)
	assert.Equal(t, c.ID, related[1].Node.ID)

	related, err = h.nodes.Related(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, related, 2)
	for _, r := range related {
		assert.Equal(t, driving.RelationGraph, r.Source)
		assert.NotEqual(t, c.ID, r.Node.ID)
	}
}

func TestRelated_UnindexedSkipsSemantic(t *testing.T) {
	h := newHarness(t)
	g, err := h.graphs.CreateGraph(context.Background(), driving.CreateGraphInput{Name: "Seeded", Seed: true})
	require.NoError(t, err)
	nodes, err := h.store.ListNodes(context.Background(), g.ID)
	require.NoError(t, err)

	related, err := h.nodes.Related(context.Background(), nodes[1].ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, nodes[2].ID, related[0].Node.ID)
	assert.Equal(t, driving.RelationGraph, related[0].Source)
}

func TestBacklinks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	g, err := h.graphs.CreateGraph(ctx, driving.CreateGraphInput{Name: "Seeded", Seed: true})
	require.NoError(t, err)
	nodes, err := h.store.ListNodes(ctx, g.ID)
	require.NoError(t, err)

	require.NoError(t, h.store.SaveRelationship(ctx, &domain.Relationship{
		ID: "r1", GraphID: g.ID, SourceNodeID: nodes[0].ID, TargetNodeID: nodes[2].ID, EdgeType: domain.EdgeTypeManual,
	}))

	backlinks, err := h.nodes.Backlinks(ctx, nodes[2].ID)
	require.NoError(t, err)
	require.Len(t, backlinks, 2)
	assert.Equal(t, nodes[0].ID, backlinks[0].ID)
	assert.Equal(t, nodes[1].ID, backlinks[1].ID)

	backlinks, err = h.nodes.Backlinks(ctx, nodes[0].ID)
	require.NoError(t, err)
	assert.Empty(t, backlinks)
}

func TestSearch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for i := 0; i < 60; i++ {
		_, err := h.ingest.AddNote(ctx, driving.NoteInput{GraphID: h.graph.ID, Title: fmt.Sprintf("Mitochondria %d", i)})
		require.NoError(t, err)
	}
	_, err := h.ingest.AddNote(ctx, driving.NoteInput{GraphID: h.graph.ID, Title: "Ribosome", Markdown: "Makes PROTEINS"})
	require.NoError(t, err)

	results, err := h.nodes.Search(ctx, "owner-1", "proteins", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Ribosome", results[0].Title)

	results, err = h.nodes.Search(ctx, "owner-1", "mitochondria", 0)
	require.NoError(t, err)
	assert.Len(t, results, DefaultSearchLimit)

	results, err = h.nodes.Search(ctx, "owner-1", "mitochondria", 500)
	require.NoError(t, err)
	assert.Len(t, results, MaxSearchLimit)

	results, err = h.nodes.Search(ctx, "someone-else", "mitochondria", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = h.nodes.Search(ctx, "owner-1", "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
