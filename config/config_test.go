package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "CCF", cfg.Market.Symbol)
	assert.InDelta(t, 0.0355, *cfg.Market.RiskFreeRate, 1e-12)
	assert.InDelta(t, 0.0002, *cfg.Simulation.Drift, 1e-12)
	assert.Equal(t, 252, cfg.Simulation.Steps)
	assert.Equal(t, []string{"CCF"}, cfg.Watch.Symbols)
	assert.Equal(t, 5*time.Minute, cfg.WatchInterval())
	assert.Equal(t, 7*24*time.Hour, cfg.Lookback())
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 100_000, cfg.Simulation.Iterations)
	assert.Equal(t, 1000, cfg.Simulation.Paths)
	assert.Equal(t, "gbmpricer.db", cfg.Storage.DSN)
	assert.Equal(t, 10*time.Second, cfg.APITimeout())
}

func TestLoad_ExplicitZerosKept(t *testing.T) {
	path := writeConfig(t, "market:\n  risk_free_rate: 0\nsimulation:\n  drift: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, *cfg.Market.RiskFreeRate)
	assert.Zero(t, *cfg.Simulation.Drift)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GBM_SYMBOL", "spy")
	t.Setenv("GBM_SEED", "1234")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PORT", "9090")

	cfg, err := Load(writeConfig(t, "market:\n  symbol: CCF\n"))
	require.NoError(t, err)

	assert.Equal(t, "SPY", cfg.Market.Symbol)
	assert.Equal(t, uint64(1234), cfg.Simulation.Seed)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoad_BadSeed(t *testing.T) {
	t.Setenv("GBM_SEED", "abc")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("nope.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "market: [unclosed"))
	assert.Error(t, err)
}
