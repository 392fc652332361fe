package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/matchpredict/internal/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(config.LogConfig{Level: "warn", Format: "json"}, &buf), "workflow")

	logger.Info().Msg("hidden")
	logger.Warn().Str("team_a", "Arsenal").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "workflow", line["component"])
	assert.Equal(t, "Arsenal", line["team_a"])
	assert.Contains(t, line, "time")
}

func TestNewDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "nonsense"}, &buf)

	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger.Info().Msg("console line")
	assert.Contains(t, buf.String(), "console line")
	assert.NotContains(t, buf.String(), `"message"`)
}
