package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmrgn/portfolio/backend/internal/infrastructure/config"
)

func TestApplyFlagsOverridesOnlyChanged(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--port", "9001", "--dev"}))

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	require.NoError(t, applyFlags(cmd, cfg))

	assert.Equal(t, "9001", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Data.Watch)
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "portfolio "+Version)
}
