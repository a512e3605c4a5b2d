package cli

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCmd_Flags(t *testing.T) {
	limit := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "n", limit.Shorthand)
	assert.Equal(t, "20", limit.DefValue)
	assert.NotNil(t, searchCmd.Flags().Lookup("json"))
}

func TestSearch(t *testing.T) {
	s := setupTestServices(t)
	g := createGraph(t, s, "Biology")
	n := addNote(t, s, g.ID, "Photosynthesis", "Plants turn light into sugar.")
	addNote(t, s, g.ID, "Respiration", "Cells burn sugar.")

	out, err := runCommand(t, "", "search", "photo")
	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] Photosynthesis")
	assert.Contains(t, out, n.ID)
	assert.NotContains(t, out, "Respiration")
}

func TestSearch_NoResults(t *testing.T) {
	setupTestServices(t)

	out, err := runCommand(t, "", "search", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearch_LimitAndJSON(t *testing.T) {
	s := setupTestServices(t)
	g := createGraph(t, s, "Biology")
	for i := 0; i < 5; i++ {
		addNote(t, s, g.ID, fmt.Sprintf("Sugar %d", i), "")
	}

	out, err := runCommand(t, "", "search", "sugar", "-n", "3", "--json")
	require.NoError(t, err)

	var got []nodeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 3)
}

func TestSearch_OtherOwnersHidden(t *testing.T) {
	s := setupTestServices(t)
	g := createGraph(t, s, "Biology")
	addNote(t, s, g.ID, "Photosynthesis", "")

	out, err := runCommand(t, "", "search", "photo", "--owner", "someone-else")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearch_RequiresQuery(t *testing.T) {
	setupTestServices(t)
	_, err := runCommand(t, "", "search")
	assert.Error(t, err)
}

func TestSearch_NoService(t *testing.T) {
	SetServices(nil)
	_, err := runCommand(t, "", "search", "x")
	assert.EqualError(t, err, "node service not configured")
}
