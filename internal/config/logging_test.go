package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer

	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)
	logger.Info("catalog loaded", "products", 3)

	// Text on stderr
	assert.Contains(t, stderr.String(), "catalog loaded")
	assert.Contains(t, stderr.String(), "products=3")

	// JSON in the file stream
	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "catalog loaded", entry["msg"])
	assert.Equal(t, float64(3), entry["products"])
}

func TestSetupLoggerWithWritersRespectsLevel(t *testing.T) {
	var stderr, file bytes.Buffer

	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelWarn)
	logger.Info("should be dropped")
	logger.Warn("should appear")

	assert.NotContains(t, stderr.String(), "should be dropped")
	assert.Contains(t, stderr.String(), "should appear")
	assert.NotContains(t, file.String(), "should be dropped")
}

func TestSetupLoggerNoFile(t *testing.T) {
	logger, cleanup := SetupLogger("", slog.LevelInfo)
	defer cleanup()

	require.NotNil(t, logger)
	assert.NoError(t, cleanup())
}
