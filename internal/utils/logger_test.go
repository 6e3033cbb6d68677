package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("Parses configured level", func(t *testing.T) {
		logger := NewLogger(LoggerConfig{Level: "debug"})
		assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
	})

	t.Run("Falls back to info on invalid level", func(t *testing.T) {
		logger := NewLogger(LoggerConfig{Level: "loud"})
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("Writes JSON to log file", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "logs", "schemaflow.log")
		logger := NewLogger(LoggerConfig{Level: "info", LogFile: logFile})

		logger.Info().Str("name", "0001_init.sql").Msg("Migration applied")

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"message":"Migration applied"`)
		assert.Contains(t, string(data), `"name":"0001_init.sql"`)
		assert.Contains(t, string(data), `"time"`)
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "info", config.Level)
	assert.False(t, config.Pretty)
	assert.False(t, config.CallerInfo)
}
