package postprocessors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlus-labs/atlus/internal/core/ports/driven"
	"github.com/atlus-labs/atlus/internal/postprocessors/chunker"
)

func TestRegistry_BuildUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Build("missing", nil)
	assert.EqualError(t, err, "unknown processor: missing")
}

func TestRegistry_Defaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	assert.Equal(t, []string{"chunker"}, r.Names())

	p, err := r.Build("chunker", map[string]any{"chunk_size": int64(800), "overlap": float64(40)})
	require.NoError(t, err)

	c, ok := p.(*chunker.Processor)
	require.True(t, ok)
	assert.Equal(t, 800, c.ChunkSize())
	assert.Equal(t, 40, c.Overlap())
}

func TestRegistry_BuildPipeline(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	r.Register("noop", func(map[string]any) (driven.PostProcessor, error) {
		return &stubProcessor{name: "noop"}, nil
	})

	p, err := r.BuildPipeline([]string{"chunker", "noop"}, map[string]map[string]any{
		"chunker": {"chunk_size": 500},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())

	_, err = r.BuildPipeline([]string{"chunker", "stemmer"}, nil)
	assert.Error(t, err)
}

func TestGetIntFromConfig(t *testing.T) {
	cfg := map[string]any{"a": 1, "b": int64(2), "c": 3.0, "d": "4"}

	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		got, ok := getIntFromConfig(cfg, key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	_, ok := getIntFromConfig(cfg, "d")
	assert.False(t, ok)
	_, ok = getIntFromConfig(nil, "a")
	assert.False(t, ok)
}
