package main

import (
	"testing"
	"time"

	"github.com/alejandrodnm/gbmpricer/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceConfig_MapsConfig(t *testing.T) {
	cfg, err := config.Load("../../config/config.yaml")
	require.NoError(t, err)

	sc := serviceConfig(cfg, true)
	assert.Equal(t, "CCF", sc.Symbol)
	assert.InDelta(t, 0.0355, sc.RiskFreeRate, 1e-12)
	assert.InDelta(t, 0.0002, sc.Drift, 1e-12)
	assert.Equal(t, 100_000, sc.Iterations)
	assert.Equal(t, 7*24*time.Hour, sc.Lookback)
	assert.True(t, sc.DryRun)
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"price", "forecast", "watch", "serve", "history"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestBootstrap_DryRunUsesFixtures(t *testing.T) {
	flags := &globalFlags{
		configPath: "../../config/config.yaml",
		dryRun:     true,
		fixtures:   "../../testdata/fixtures/prices.yaml",
		seed:       7,
	}
	a, err := bootstrap(flags)
	require.NoError(t, err)
	defer a.close()

	assert.Nil(t, a.store)
	assert.Nil(t, a.storage)
	assert.Equal(t, uint64(7), a.sim.Seed())
	assert.Error(t, requireStorage(a))
}

func TestOptionalFlags_ExplicitZeroIsKept(t *testing.T) {
	var (
		vol   *float64
		iters *int
	)
	require.NoError(t, floatOpt(&vol)("0"))
	require.NoError(t, intOpt(&iters)("0"))

	require.NotNil(t, vol)
	require.NotNil(t, iters)
	assert.Zero(t, *vol)
	assert.Zero(t, *iters)

	assert.Error(t, floatOpt(&vol)("abc"))
	assert.Error(t, intOpt(&iters)("1.5"))
}

func TestPriceCmd_UnsetFlagsStayNil(t *testing.T) {
	cmd := newPriceCmd(&globalFlags{})
	require.NoError(t, cmd.ParseFlags([]string{"--volatility", "0"}))

	assert.True(t, cmd.Flags().Changed("volatility"))
	assert.False(t, cmd.Flags().Changed("iterations"))
}
