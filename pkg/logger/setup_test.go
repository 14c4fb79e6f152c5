package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/raywall/fast-crud-service/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	t.Run("Default Level Info", func(t *testing.T) {
		_ = Configure(config.LoggingConf{Enabled: true})
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("Custom Level Debug", func(t *testing.T) {
		_ = Configure(config.LoggingConf{Enabled: true, Level: "DEBUG"})
		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("Invalid Level falls back to Info", func(t *testing.T) {
		_ = Configure(config.LoggingConf{Enabled: true, Level: "loud"})
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("JSON output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := configure(config.LoggingConf{Enabled: true, Level: "info", Format: "json"}, &buf)

		comp := Component(logger, "app:inicio")
		comp.Info().Msg("Morgan esta habilitado")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "app:inicio", entry["component"])
		assert.Equal(t, "Morgan esta habilitado", entry["message"])
	})

	t.Run("Disabled Logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := configure(config.LoggingConf{Enabled: false}, &buf)

		logger.Info().Msg("teste")
		assert.Zero(t, buf.Len())
	})
}
