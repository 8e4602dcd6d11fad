package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONConComponenteYNivel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", Out: &buf})

	l.Info().Msg("descartado")
	zl := l.For("ledger")
	zl.Warn().Str("product_id", "p1").Msg("diferencia")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "ledger", rec["component"])
	assert.Equal(t, "warn", rec["level"])
	assert.Equal(t, "p1", rec["product_id"])
}

func TestNop(t *testing.T) {
	l := logger.Nop()
	l.Error().Msg("nada")
	assert.NotNil(t, l.Zerolog())
}
