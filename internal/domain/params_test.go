package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketParameters_Validate(t *testing.T) {
	assert.NoError(t, referenceParams().Validate())

	p := referenceParams()
	p.RiskFreeRate = -0.02
	assert.NoError(t, p.Validate(), "negative rates are allowed")

	for _, mutate := range []func(*MarketParameters){
		func(p *MarketParameters) { p.Spot = 0 },
		func(p *MarketParameters) { p.Strike = -5 },
		func(p *MarketParameters) { p.Expiry = 0 },
		func(p *MarketParameters) { p.Volatility = -0.1 },
		func(p *MarketParameters) { p.Spot = math.Inf(1) },
		func(p *MarketParameters) { p.Volatility = math.NaN() },
	} {
		bad := referenceParams()
		mutate(&bad)
		assert.ErrorIs(t, bad.Validate(), ErrInvalidParameter, "params=%+v", bad)
	}
}

func TestSimulationConfig_Validate(t *testing.T) {
	assert.NoError(t, SimulationConfig{Iterations: 1, Steps: 1}.Validate())
	assert.ErrorIs(t, SimulationConfig{Iterations: 0, Steps: 252}.Validate(), ErrInvalidParameter)
	assert.ErrorIs(t, SimulationConfig{Iterations: 10, Steps: 0}.Validate(), ErrInvalidParameter)
}

func TestLatestPrice(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }
	series := []PricePoint{
		{Date: day(5), Price: 101},
		{Date: day(7), Price: 103},
		{Date: day(6), Price: 102},
		{Date: day(8), Price: 0}, // hueco del proveedor
	}

	latest, err := LatestPrice(series)
	require.NoError(t, err)
	assert.Equal(t, 103.0, latest.Price)
	assert.Equal(t, day(7), latest.Date)
}

func TestLatestPrice_Empty(t *testing.T) {
	_, err := LatestPrice(nil)
	assert.ErrorIs(t, err, ErrDataUnavailable)

	_, err = LatestPrice([]PricePoint{{Price: -1}, {Price: math.NaN()}})
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestPricingRun_RelErrors(t *testing.T) {
	run := PricingRun{
		Analytic:   PricingResult{Call: 10, Put: 5},
		MonteCarlo: MonteCarloResult{PricingResult: PricingResult{Call: 10.1, Put: 4.9}},
	}
	assert.InDelta(t, 0.01, run.CallRelError(), 1e-12)
	assert.InDelta(t, 0.02, run.PutRelError(), 1e-12)

	zero := PricingRun{}
	assert.Equal(t, 0.0, zero.CallRelError())
	zero.MonteCarlo.Call = 0.1
	assert.True(t, math.IsInf(zero.CallRelError(), 1))
}

func TestForecastRun_ExpectedReturn(t *testing.T) {
	run := ForecastRun{Spot: 100, Forecast: Forecast{Final: 105}}
	assert.InDelta(t, 0.05, run.ExpectedReturn(), 1e-12)
	assert.Equal(t, 0.0, ForecastRun{}.ExpectedReturn())
}
