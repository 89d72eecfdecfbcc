package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCargar_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "almacen.db", cfg.Store.SQLitePath)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.True(t, decimal.NewFromInt(5).Equal(cfg.Inventory.LowStockThreshold))
	assert.Equal(t, 7, cfg.Inventory.CheckStaleDays)
	assert.Equal(t, 7, cfg.Inventory.ExpiringSoonDays)
	assert.False(t, cfg.Workflow.IdempotentReplay)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestCargar_DesdeEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/almacen-test.db")
	t.Setenv("INVENTORY_LOW_STOCK_THRESHOLD", "2.5")
	t.Setenv("INVENTORY_CHECK_STALE_DAYS", "14")
	t.Setenv("WORKFLOW_IDEMPOTENT_REPLAY", "true")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/almacen-test.db", cfg.Store.SQLitePath)
	assert.True(t, decimal.RequireFromString("2.5").Equal(cfg.Inventory.LowStockThreshold))
	assert.Equal(t, 14, cfg.Inventory.CheckStaleDays)
	assert.True(t, cfg.Workflow.IdempotentReplay)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestCargar_ValoresInvalidos(t *testing.T) {
	t.Run("driver desconocido", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("umbral no numérico", func(t *testing.T) {
		t.Setenv("INVENTORY_LOW_STOCK_THRESHOLD", "cinco")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("umbral negativo", func(t *testing.T) {
		t.Setenv("INVENTORY_LOW_STOCK_THRESHOLD", "-1")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDBConfig_CadenaDeConexion(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "almacen", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/almacen?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
