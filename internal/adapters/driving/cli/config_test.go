package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSetGetList(t *testing.T) {
	s := setupTestServices(t)

	out, err := runCommand(t, "", "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No values set")

	out, err = runCommand(t, "", "config", "set", "llm.provider", "anthropic")
	require.NoError(t, err)
	assert.Contains(t, out, "llm.provider = anthropic")

	_, err = runCommand(t, "", "config", "set", "ingest.concurrency", "4")
	require.NoError(t, err)
	v, ok := s.Config.Get("ingest.concurrency")
	require.True(t, ok)
	assert.Equal(t, int64(4), v)

	out, err = runCommand(t, "", "config", "get", "llm.provider")
	require.NoError(t, err)
	assert.Contains(t, out, "anthropic")

	out, err = runCommand(t, "", "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ingest.concurrency = 4")
	assert.Contains(t, out, "llm.provider = anthropic")
}

func TestConfigGet_Unset(t *testing.T) {
	setupTestServices(t)

	out, err := runCommand(t, "", "config", "get", "llm.model")
	require.NoError(t, err)
	assert.Contains(t, out, "llm.model is not set")
}

func TestConfig_UnknownKey(t *testing.T) {
	setupTestServices(t)

	_, err := runCommand(t, "", "config", "get", "llm.colour")
	assert.ErrorContains(t, err, `unknown config key: "llm.colour"`)

	_, err = runCommand(t, "", "config", "set", "nope", "1")
	assert.ErrorContains(t, err, "Valid keys:")
}

func TestConfig_MasksSecrets(t *testing.T) {
	setupTestServices(t)

	out, err := runCommand(t, "", "config", "set", "llm.api_key", "sk-1234567890abcdef")
	require.NoError(t, err)
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.Contains(t, out, "sk-1****cdef")

	out, err = runCommand(t, "", "config", "get", "llm.api_key")
	require.NoError(t, err)
	assert.Contains(t, out, "sk-1****cdef")
}

func TestConfigCheck(t *testing.T) {
	s := setupTestServices(t)

	out, err := runCommand(t, "", "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "generator")
	assert.Contains(t, out, "local")
	assert.Contains(t, out, "All configured capabilities are reachable")

	s.Warnings = []string{"embedding provider unreachable, using zero vectors"}
	out, err = runCommand(t, "", "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "embedding provider unreachable")
}

func TestConfig_NoStore(t *testing.T) {
	SetServices(nil)
	_, err := runCommand(t, "", "config", "list")
	assert.EqualError(t, err, "config store not configured")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"true", true},
		{"false", false},
		{"1", int64(1)},
		{"-3", int64(-3)},
		{"0.78", 0.78},
		{"anthropic", "anthropic"},
		{"TRUE", "TRUE"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.raw))
		})
	}
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "(not set)", maskSecret(""))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "abcd****mnop", maskSecret("abcdefghijklmnop"))
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "ollama", displayValue("llm.provider", "ollama"))
	assert.Equal(t, "post****h/db", displayValue("storage.dsn", "postgres://u:p@h/db"))
	assert.Equal(t, "4", displayValue("ingest.concurrency", int64(4)))
}

func TestCompleteConfigKeys(t *testing.T) {
	keys, _ := completeConfigKeys(nil, nil, "")
	assert.Contains(t, keys, "llm.provider")

	keys, _ = completeConfigKeys(nil, []string{"llm.provider"}, "")
	assert.Nil(t, keys)
}
