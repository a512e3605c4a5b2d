package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SeededValues(t *testing.T) {
	store := NewConfigStore(map[string]any{"llm.provider": "openai", "linking.top_k": int64(4)})

	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, 4, store.GetInt("linking.top_k"))
	assert.Equal(t, []string{"linking.top_k", "llm.provider"}, store.Keys())
}

func TestConfigStore_TypeConversions(t *testing.T) {
	store := NewConfigStore(nil)
	require.NoError(t, store.Set("threshold", 0.78))
	require.NoError(t, store.Set("ephemeral", true))
	require.NoError(t, store.Set("count", 7.9))

	assert.Equal(t, 7, store.GetInt("count"))
	assert.True(t, store.GetBool("ephemeral"))
	assert.Equal(t, "", store.GetString("threshold"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.False(t, store.GetBool("threshold"))

	v, ok := store.Get("threshold")
	assert.True(t, ok)
	assert.InDelta(t, 0.78, v, 1e-9)
}

func TestConfigStore_NoOpPersistence(t *testing.T) {
	store := NewConfigStore(nil)
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentSetAndGet(t *testing.T) {
	store := NewConfigStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.Set("key", i)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("key")
		}()
	}
	wg.Wait()
	_, ok := store.Get("key")
	assert.True(t, ok)
}
