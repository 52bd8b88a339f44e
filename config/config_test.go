package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 3*time.Second, cfg.Database.LockTimeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_PrefixedEnvOverrides(t *testing.T) {
	t.Setenv("WALLET_DATABASE_URL", "postgres://app:secret@db:5432/wallet")
	t.Setenv("WALLET_LOG_LEVEL", "debug")
	t.Setenv("WALLET_SERVER_PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://app:secret@db:5432/wallet", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_DeploymentSurface(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@host:5432/wallet")
	t.Setenv("PORT", "3000")
	t.Setenv("WEB_CONCURRENCY", "8")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@host:5432/wallet", cfg.Database.URL)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, int32(8), cfg.Database.MaxConns)
}

func TestNormalizeDatabaseURL(t *testing.T) {
	assert.Equal(t,
		"postgresql://u:p@host:5432/wallet",
		NormalizeDatabaseURL("postgres://u:p@host:5432/wallet"))
	assert.Equal(t,
		"postgresql://u:p@host:5432/wallet",
		NormalizeDatabaseURL("postgresql://u:p@host:5432/wallet"))
	assert.Equal(t, "", NormalizeDatabaseURL(""))
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{URL: "postgres://u:p@host:5432/wallet?sslmode=disable"}
	assert.Equal(t, "postgresql://u:p@host:5432/wallet?sslmode=disable", d.DSN())
}
