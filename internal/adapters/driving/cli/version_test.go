package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
	assert.Equal(t, bootstrapNone, versionCmd.Annotations[annotationBootstrap])
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := runCommand(t, "", "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "atlus version test-version-1.0.0")
}

func TestVersionCmd_SkipsBootstrap(t *testing.T) {
	called := false
	original := bootstrap
	bootstrap = func(_ context.Context, _ BootOptions) (*Services, error) {
		called = true
		return nil, errors.New("should not run")
	}
	defer func() { bootstrap = original }()

	_, err := runCommand(t, "", "version")

	assert.NoError(t, err)
	assert.False(t, called)
}
