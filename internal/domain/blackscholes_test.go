package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceParams() MarketParameters {
	return MarketParameters{Spot: 100, Strike: 100, Expiry: 1, RiskFreeRate: 0.05, Volatility: 0.2}
}

func TestBlackScholes_ReferenceCase(t *testing.T) {
	res, err := BlackScholes(referenceParams())
	require.NoError(t, err)

	// Hull: call ≈ 10.4506, put ≈ 5.5735
	assert.InDelta(t, 10.45, res.Call, 0.01)
	assert.InDelta(t, 5.57, res.Put, 0.01)
	assert.InDelta(t, 10.450583572185565, res.Call, 1e-9)
	assert.InDelta(t, 5.573526022256971, res.Put, 1e-9)
}

func TestBlackScholes_PutCallParity(t *testing.T) {
	cases := []MarketParameters{
		referenceParams(),
		{Spot: 42, Strike: 40, Expiry: 0.5, RiskFreeRate: 0.10, Volatility: 0.2},
		{Spot: 50, Strike: 80, Expiry: 2, RiskFreeRate: 0.0355, Volatility: 0.35},
		{Spot: 250, Strike: 120, Expiry: 0.1, RiskFreeRate: 0, Volatility: 0.6},
		{Spot: 10, Strike: 10, Expiry: 5, RiskFreeRate: -0.01, Volatility: 0.05},
	}
	for _, p := range cases {
		res, err := BlackScholes(p)
		require.NoError(t, err)
		want := p.Spot - p.Strike*math.Exp(-p.RiskFreeRate*p.Expiry)
		assert.InDelta(t, want, res.Call-res.Put, 1e-9, "params=%+v", p)
	}
}

func TestBlackScholes_NonNegative(t *testing.T) {
	for _, strike := range []float64{1, 50, 100, 150, 1000, 1e6} {
		for _, vol := range []float64{1e-8, 0.01, 0.2, 1.5} {
			p := MarketParameters{Spot: 100, Strike: strike, Expiry: 1, RiskFreeRate: 0.05, Volatility: vol}
			res, err := BlackScholes(p)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, res.Call, 0.0, "strike=%v vol=%v", strike, vol)
			assert.GreaterOrEqual(t, res.Put, 0.0, "strike=%v vol=%v", strike, vol)
		}
	}
}

func TestBlackScholes_ZeroVolatilityLimit(t *testing.T) {
	for _, strike := range []float64{80, 100, 120} {
		p := MarketParameters{Spot: 100, Strike: strike, Expiry: 1, RiskFreeRate: 0.05, Volatility: 1e-6}
		res, err := BlackScholes(p)
		require.NoError(t, err)
		assert.InDelta(t, IntrinsicCall(p), res.Call, 1e-3, "strike=%v", strike)
		assert.InDelta(t, IntrinsicPut(p), res.Put, 1e-3, "strike=%v", strike)
	}
}

func TestBlackScholes_InvalidParameters(t *testing.T) {
	base := referenceParams()

	zeroVol := base
	zeroVol.Volatility = 0
	_, err := BlackScholes(zeroVol)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	zeroT := base
	zeroT.Expiry = 0
	_, err = BlackScholes(zeroT)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	negSpot := base
	negSpot.Spot = -1
	_, err = BlackScholes(negSpot)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	nanRate := base
	nanRate.RiskFreeRate = math.NaN()
	_, err = BlackScholes(nanRate)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBlackScholesTerms_Reference(t *testing.T) {
	d1, d2, err := BlackScholesTerms(referenceParams())
	require.NoError(t, err)
	assert.InDelta(t, 0.35, d1, 1e-12)
	assert.InDelta(t, 0.15, d2, 1e-12)
}

func TestBlackScholesTerms_Invalid(t *testing.T) {
	p := referenceParams()
	p.Strike = 0
	_, _, err := BlackScholesTerms(p)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
