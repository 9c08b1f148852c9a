package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}

func TestNewWithWriter_FiltraPorNivelYAgregaComponente(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn").Component("alerts")

	log.Info().Msg("no se escribe")
	log.Warn().Str("product_id", "p1").Msg("stock bajo")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "alerts", entry["component"])
	assert.Equal(t, "p1", entry["product_id"])
	assert.Equal(t, "stock bajo", entry["message"])
}

func TestNop_NoEscribe(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error().Msg("descartado") })
}
