package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphCreate(t *testing.T) {
	s := setupTestServices(t)

	out, err := runCommand(t, "", "graph", "create", "Biology", "--badge", "Textbook")
	require.NoError(t, err)
	assert.Contains(t, out, "Created graph")
	assert.Contains(t, out, "Biology")

	graphs, err := s.Graph.ListGraphs(context.Background(), DefaultOwner)
	require.NoError(t, err)
	require.Len(t, graphs, 1)
	assert.Equal(t, "Textbook", string(graphs[0].Badge))

	view, err := s.Graph.View(context.Background(), graphs[0].ID)
	require.NoError(t, err)
	assert.Len(t, view.Nodes, 3)
}

func TestGraphCreate_NoSeedJSON(t *testing.T) {
	s := setupTestServices(t)

	out, err := runCommand(t, "", "graph", "create", "Journal", "--no-seed", "--json")
	require.NoError(t, err)

	var got graphOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Journal", got.Name)
	assert.Equal(t, "Notes", got.Badge)
	assert.Equal(t, DefaultOwner, got.OwnerID)

	view, err := s.Graph.View(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Nodes)
}

func TestGraphCreate_InvalidBadge(t *testing.T) {
	setupTestServices(t)

	_, err := runCommand(t, "", "graph", "create", "X", "--badge", "Poster")
	assert.Error(t, err)
}

func TestGraphCreate_OwnerFlag(t *testing.T) {
	s := setupTestServices(t)

	_, err := runCommand(t, "", "graph", "create", "Shared", "--no-seed", "--owner", "alice")
	require.NoError(t, err)

	graphs, err := s.Graph.ListGraphs(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, graphs, 1)

	graphs, err = s.Graph.ListGraphs(context.Background(), DefaultOwner)
	require.NoError(t, err)
	assert.Empty(t, graphs)
}

func TestGraphList(t *testing.T) {
	s := setupTestServices(t)

	out, err := runCommand(t, "", "graph", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No graphs yet")

	g := createGraph(t, s, "Physics")
	out, err = runCommand(t, "", "graph", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Physics")
	assert.Contains(t, out, g.ID)

	out, err = runCommand(t, "", "graph", "list", "--json")
	require.NoError(t, err)
	var got []graphOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, g.ID, got[0].ID)
}

func TestGraphShow(t *testing.T) {
	s := setupTestServices(t)
	g := createGraph(t, s, "Chemistry")
	addNote(t, s, g.ID, "Atoms", "Atoms are small.")

	out, err := runCommand(t, "", "graph", "show", g.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Chemistry")
	assert.Contains(t, out, "Atoms")

	out, err = runCommand(t, "", "graph", "show", g.ID, "--json")
	require.NoError(t, err)
	var got graphViewOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, g.ID, got.Graph.ID)
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, "Atoms", got.Nodes[0].Title)
}

func TestGraphShow_Unknown(t *testing.T) {
	setupTestServices(t)

	_, err := runCommand(t, "", "graph", "show", "missing")
	assert.ErrorContains(t, err, "loading graph")
}

func TestGraphDelete(t *testing.T) {
	s := setupTestServices(t)
	g := createGraph(t, s, "Scratch")

	out, err := runCommand(t, "n\n", "graph", "delete", g.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")
	_, err = s.Graph.GetGraph(context.Background(), g.ID)
	require.NoError(t, err)

	out, err = runCommand(t, "yes\n", "graph", "delete", g.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted graph Scratch")
	_, err = s.Graph.GetGraph(context.Background(), g.ID)
	assert.Error(t, err)
}

func TestGraphDelete_Yes(t *testing.T) {
	s := setupTestServices(t)
	g := createGraph(t, s, "Scratch")

	_, err := runCommand(t, "", "graph", "delete", g.ID, "-y")
	require.NoError(t, err)
	_, err = s.Graph.GetGraph(context.Background(), g.ID)
	assert.Error(t, err)
}

func TestGraphCommands_NoService(t *testing.T) {
	SetServices(nil)

	for _, args := range [][]string{
		{"graph", "create", "x"},
		{"graph", "list"},
		{"graph", "show", "x"},
		{"graph", "delete", "x", "-y"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := runCommand(t, "", args...)
			assert.EqualError(t, err, "graph service not configured")
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yep\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			out := new(strings.Builder)
			got, err := confirm(strings.NewReader(tt.input), out, "Proceed?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Proceed? [y/N]: ", out.String())
		})
	}
}
