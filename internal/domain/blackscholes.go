package domain

import (
	"fmt"
	"math"
)

// PricingResult holds the value of a European call and put on the same underlying.
type PricingResult struct {
	Call float64
	Put  float64
}

// BlackScholesTerms returns d1 and d2 of the Black-Scholes formula.
//
//	d1 = (ln(S0/E) + (rf + σ²/2)·T) / (σ·√T)
//	d2 = d1 - σ·√T
func BlackScholesTerms(p MarketParameters) (d1, d2 float64, err error) {
	if err := p.Validate(); err != nil {
		return 0, 0, fmt.Errorf("domain.BlackScholesTerms: %w", err)
	}
	d1, d2 = blackScholesTerms(p)
	return d1, d2, nil
}

// BlackScholes values a European call and put in closed form.
// Put-call parity holds by construction: Call - Put = S0 - E·e^{-rf·T}.
func BlackScholes(p MarketParameters) (PricingResult, error) {
	if err := p.Validate(); err != nil {
		return PricingResult{}, fmt.Errorf("domain.BlackScholes: %w", err)
	}

	d1, d2 := blackScholesTerms(p)
	discountedStrike := p.Strike * p.DiscountFactor()

	call := p.Spot*NormalCDF(d1) - discountedStrike*NormalCDF(d2)
	put := discountedStrike*NormalCDF(-d2) - p.Spot*NormalCDF(-d1)

	return PricingResult{
		Call: math.Max(call, 0),
		Put:  math.Max(put, 0),
	}, nil
}

// IntrinsicCall returns max(0, S0 - E·e^{-rf·T}), the σ→0 limit of the call value.
func IntrinsicCall(p MarketParameters) float64 {
	return math.Max(p.Spot-p.Strike*p.DiscountFactor(), 0)
}

// IntrinsicPut returns max(0, E·e^{-rf·T} - S0), the σ→0 limit of the put value.
func IntrinsicPut(p MarketParameters) float64 {
	return math.Max(p.Strike*p.DiscountFactor()-p.Spot, 0)
}

func blackScholesTerms(p MarketParameters) (d1, d2 float64) {
	volSqrtT := p.Volatility * math.Sqrt(p.Expiry)
	d1 = (math.Log(p.Spot/p.Strike) + (p.RiskFreeRate+0.5*p.Volatility*p.Volatility)*p.Expiry) / volSqrtT
	d2 = d1 - volSqrtT
	return d1, d2
}
