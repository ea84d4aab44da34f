package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 5000*time.Millisecond, cfg.Inventory.LockTimeout())
	assert.Empty(t, cfg.Redis.Addr, "sin REDIS_ADDR se usa bloqueo local")
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("INVENTORY_MAX_RETRIES", "5")
	t.Setenv("INVENTORY_LOCK_TIMEOUT_MS", "1500")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("FINANCE_DEFAULT_ACCOUNT_ID", "caja-1")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Inventory.MaxRetries)
	assert.Equal(t, 1500*time.Millisecond, cfg.Inventory.LockTimeout())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "caja-1", cfg.Finance.DefaultAccountID)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_LockTimeoutInvalido(t *testing.T) {
	t.Setenv("INVENTORY_LOCK_TIMEOUT_MS", "0")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ProduccionExigeSecreto(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cr3to")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.App.IsProduction())
}

func TestLoad_BackoffDeReintento(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, cfg.Inventory.RetryBackoff())

	t.Setenv("INVENTORY_RETRY_BACKOFF_MS", "-1")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "lotes", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/lotes?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://otra"
	assert.Equal(t, "postgres://otra", c.ConnectionString())
}
