package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/arcade/internal/config"
)

func TestNewHandlerLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewHandlerLogger("warn", "text", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "game", "catch")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "game=catch")
}

func TestNewHandlerLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	NewHandlerLogger("debug", "json", &buf).Debug("tick", "frame", 3)
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "tick", record["msg"])
	assert.EqualValues(t, 3, record["frame"])
}

func TestNewWritesToArcadeLog(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, config.InitArcadeDir(root))
	cfg, err := config.NewConfig(root)
	require.NoError(t, err)

	logger, err := New(cfg)
	require.NoError(t, err)
	logger.Info("session finished", "score", 12)
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(cfg.LogPath())
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "session finished"))
	assert.NoError(t, (*Logger)(nil).Close())
}
