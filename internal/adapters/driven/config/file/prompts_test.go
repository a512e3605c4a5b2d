package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlus-labs/atlus/internal/core/ports/driven"
	llmgen "github.com/atlus-labs/atlus/internal/generators/llm"
)

func TestPromptStore_CreatesDefaultsLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	prompt, err := store.Load(driven.PromptNodeGeneration)
	require.NoError(t, err)
	assert.Equal(t, llmgen.DefaultNodePrompt, prompt)
	assert.FileExists(t, filepath.Join(dir, driven.PromptNodeGeneration+".txt"))
	assert.FileExists(t, filepath.Join(dir, driven.PromptMarkdownStructure+".txt"))
}

func TestPromptStore_UserOverrideAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, driven.PromptMarkdownStructure+".txt")
	require.NoError(t, os.WriteFile(path, []byte("  Custom markdown prompt \n"), 0600))

	prompt, err := store.Load(driven.PromptMarkdownStructure)
	require.NoError(t, err)
	assert.Equal(t, "Custom markdown prompt", prompt)

	require.NoError(t, os.WriteFile(path, []byte("Edited"), 0600))
	cached, err := store.Load(driven.PromptMarkdownStructure)
	require.NoError(t, err)
	assert.Equal(t, "Custom markdown prompt", cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptMarkdownStructure)
	require.NoError(t, err)
	assert.Equal(t, "Edited", fresh)
}

func TestPromptStore_EmptyFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, driven.PromptNodeGeneration+".txt"), []byte("   "), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	prompt, err := store.Load(driven.PromptNodeGeneration)
	require.NoError(t, err)
	assert.Equal(t, llmgen.DefaultNodePrompt, prompt)
}

func TestPromptStore_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("does_not_exist")
	assert.Error(t, err)
}
