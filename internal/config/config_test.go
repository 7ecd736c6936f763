package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.True(t, cfg.AutoMigrateUp)
	assert.False(t, cfg.AutoMigrateDown)
	assert.Empty(t, cfg.MigrationsURL)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "127.0.0.1:9090")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("SQLITE_PATH", "/tmp/test.db")
	t.Setenv("AUTO_MIGRATE_DOWN", "true")
	t.Setenv("WRITE_TIMEOUT", "5s")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.ServerAddress)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, "/tmp/test.db", cfg.SQLitePath)
	assert.True(t, cfg.AutoMigrateDown)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
}

func TestNewConfigInvalid(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := NewConfig()
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", DriverPostgres)
	t.Setenv("DB_MAX_OPEN_CONNS", "-1")
	_, err = NewPostgresConfig()
	assert.Error(t, err)

	t.Setenv("DB_MAX_OPEN_CONNS", "ten")
	_, err = NewPostgresConfig()
	assert.Error(t, err)
}
