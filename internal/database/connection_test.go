package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/schemaflow/internal/config"
	"github.com/example/schemaflow/internal/utils"
)

func sqliteConfig(path string) *config.Config {
	cfg := config.NewDefault()
	cfg.Database.Path = path
	cfg.Log.Level = "error"
	return cfg
}

func TestDatabase_EnsureExists(t *testing.T) {
	t.Run("Creates parent directory for sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "deeper", "app.db")
		db := New(sqliteConfig(path))

		require.NoError(t, db.EnsureExists())

		info, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Relative path without directory is fine", func(t *testing.T) {
		db := New(sqliteConfig("app.db"))
		assert.NoError(t, db.EnsureExists())
	})

	t.Run("Unsupported driver", func(t *testing.T) {
		cfg := config.NewDefault()
		cfg.Database.Driver = "oracle"
		db := New(cfg)

		err := db.EnsureExists()
		require.Error(t, err)
		assert.True(t, utils.IsConnectionError(err))
	})
}

func TestDatabase_ConnectAndHealth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	db := New(sqliteConfig(path))

	require.NoError(t, db.EnsureExists())
	require.NoError(t, db.Connect())
	t.Cleanup(func() { db.Close() })

	require.NotNil(t, db.DB())
	assert.Equal(t, config.DriverSQLite, db.Driver())

	require.NoError(t, db.Health(context.Background()))

	// Opening the connection created the database file
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestDatabase_HealthWithoutConnection(t *testing.T) {
	db := New(sqliteConfig(filepath.Join(t.TempDir(), "app.db")))

	err := db.Health(context.Background())
	require.Error(t, err)
	assert.True(t, utils.IsConnectionError(err))
}

func TestDatabase_Close(t *testing.T) {
	db := New(sqliteConfig(filepath.Join(t.TempDir(), "app.db")))
	require.NoError(t, db.Connect())

	require.NoError(t, db.Close())
	assert.Nil(t, db.DB())

	// Closing twice is harmless
	assert.NoError(t, db.Close())
}

func TestDatabase_ConnectUnsupportedDriver(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Database.Driver = "oracle"
	db := New(cfg)

	err := db.Connect()
	require.Error(t, err)
	assert.True(t, utils.IsConnectionError(err))
}
