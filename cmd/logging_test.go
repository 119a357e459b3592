package cmd_test

import (
	"os"
	"path/filepath"
	"testing"

	"dispatch/cmd"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	// Given
	var cfg cmd.Config
	cfg.Log.Level = "debug"
	cfg.Log.File = filepath.Join(t.TempDir(), "dispatch.log")
	cfg.Log.MaxSizeMB = 1

	// When
	logger, closer := cmd.NewLogger(cfg)
	logger.With("component", "test").Debug("hello", "driver_id", "d-1")
	require.NoError(t, closer.Close())

	// Then
	content, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"hello"`)
	assert.Contains(t, string(content), `"component":"test"`)
}

func TestEchoLogLevel(t *testing.T) {
	assert.Equal(t, log.DEBUG, cmd.EchoLogLevel("DEBUG"))
	assert.Equal(t, log.WARN, cmd.EchoLogLevel("warn"))
	assert.Equal(t, log.INFO, cmd.EchoLogLevel(""))
}
