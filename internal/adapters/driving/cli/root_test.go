package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlus-labs/atlus/internal/adapters/driven/storage/memory"
)

func withBootstrap(t *testing.T, b Bootstrapper) {
	t.Helper()
	original := bootstrap
	bootstrap = b
	t.Cleanup(func() {
		bootstrap = original
		SetServices(nil)
	})
}

func TestBootstrapMode(t *testing.T) {
	assert.Equal(t, bootstrapNone, bootstrapMode(versionCmd))
	assert.Equal(t, bootstrapConfig, bootstrapMode(configGetCmd))
	assert.Equal(t, "", bootstrapMode(configCheckCmd))
	assert.Equal(t, "", bootstrapMode(graphListCmd))
	assert.Equal(t, "", bootstrapMode(rootCmd))
}

func TestBootstrap_ConfigCommandsSkipTheStore(t *testing.T) {
	var got BootOptions
	withBootstrap(t, func(_ context.Context, opts BootOptions) (*Services, error) {
		got = opts
		return &Services{Config: memory.NewConfigStore(map[string]any{"llm.provider": "ollama"})}, nil
	})

	out, err := runCommand(t, "", "config", "get", "llm.provider", "--config", "/tmp/atlus.toml", "-v")

	require.NoError(t, err)
	assert.Contains(t, out, "ollama")
	assert.True(t, got.ConfigOnly)
	assert.True(t, got.Verbose)
	assert.Equal(t, "/tmp/atlus.toml", got.ConfigFile)
}

func TestBootstrap_FullForServiceCommands(t *testing.T) {
	var got BootOptions
	withBootstrap(t, func(_ context.Context, opts BootOptions) (*Services, error) {
		got = opts
		return &Services{}, nil
	})

	_, err := runCommand(t, "", "graph", "list")

	// No graph service in the returned bundle.
	assert.EqualError(t, err, "graph service not configured")
	assert.False(t, got.ConfigOnly)
}

func TestBootstrap_ErrorStopsCommand(t *testing.T) {
	withBootstrap(t, func(context.Context, BootOptions) (*Services, error) {
		return nil, errors.New("opening store: disk full")
	})

	_, err := runCommand(t, "", "graph", "list")
	assert.EqualError(t, err, "opening store: disk full")
}

func TestCloseServices_RunsOnce(t *testing.T) {
	calls := 0
	withBootstrap(t, func(context.Context, BootOptions) (*Services, error) {
		s := &Services{Config: memory.NewConfigStore(nil)}
		s.Close = func() error {
			calls++
			return nil
		}
		return s, nil
	})

	_, err := runCommand(t, "", "config", "list")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	require.NoError(t, closeServices(nil, nil))
	assert.Equal(t, 1, calls)
}

func TestCloseServices_WrapsError(t *testing.T) {
	SetServices(&Services{Close: func() error { return errors.New("busy") }})
	t.Cleanup(func() { SetServices(nil) })

	err := closeServices(nil, nil)
	assert.EqualError(t, err, "shutting down: busy")
}

func TestSetServices_Nil(t *testing.T) {
	setupTestServices(t)
	SetServices(nil)

	assert.Error(t, requireGraphService())
	assert.Error(t, requireNodeService())
	assert.Error(t, requireIngestService())
	assert.Error(t, requireConfigStore())
}

func TestExecute_SetsVersionAndBootstrapper(t *testing.T) {
	original := version
	t.Cleanup(func() { version = original })
	withBootstrap(t, nil)

	resetFlags(rootCmd)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	called := false
	err := Execute(context.Background(), "1.2.3", func(context.Context, BootOptions) (*Services, error) {
		called = true
		return &Services{}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "1.2.3", version)
	assert.False(t, called)
}
