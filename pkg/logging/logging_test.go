package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONCarriesRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRun(&buf, "sync", "run-1", "debug", "json")
	logger.Info().Str("task", "t1").Msg("created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sync", entry["app"])
	assert.Equal(t, "t1", entry["task"])
	assert.Equal(t, "created", entry["message"])
	assert.Equal(t, "run-1", entry["run_id"])
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRun(&buf, "notify", "run-2", "warn", "json")
	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRun(&buf, "report", "run-3", "loud", "json")
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewRunUsesGivenID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRun(&buf, "sync", "run-42", "info", "json")
	logger.Info().Msg("started")
	assert.Contains(t, buf.String(), `"run_id":"run-42"`)
}
