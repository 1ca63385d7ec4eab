package domain

import (
	"fmt"
	"math"
	"time"
)

// DefaultForecastSteps is the number of trading days in a one-year forecast.
const DefaultForecastSteps = 252

// MarketParameters holds the inputs of a European option valuation.
type MarketParameters struct {
	Spot         float64 // S0, precio del subyacente hoy
	Strike       float64 // E
	Expiry       float64 // T, en años
	RiskFreeRate float64 // rf anualizado, compuesto continuo
	Volatility   float64 // sigma anualizada (desviación típica de log-returns)
}

// Validate checks S0, E, T and sigma are strictly positive and every field is finite.
func (p MarketParameters) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"spot", p.Spot},
		{"strike", p.Strike},
		{"expiry", p.Expiry},
		{"volatility", p.Volatility},
	}
	for _, c := range checks {
		if !isFinite(c.value) || c.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParameter, c.name, c.value)
		}
	}
	if !isFinite(p.RiskFreeRate) {
		return fmt.Errorf("%w: risk-free rate must be finite, got %v", ErrInvalidParameter, p.RiskFreeRate)
	}
	return nil
}

// DiscountFactor returns e^{-rf·T}.
func (p MarketParameters) DiscountFactor() float64 {
	return math.Exp(-p.RiskFreeRate * p.Expiry)
}

// SimulationConfig sizes a Monte Carlo run.
type SimulationConfig struct {
	Iterations int // independent paths or terminal draws
	Steps      int // increments per path; terminal pricing uses 1
}

// Validate checks both counts are positive.
func (c SimulationConfig) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidParameter, c.Iterations)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidParameter, c.Steps)
	}
	return nil
}

// PricePoint is one adjusted close from the market data provider.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// LatestPrice returns the most recent positive price of a series.
// The series does not need to be sorted.
func LatestPrice(series []PricePoint) (PricePoint, error) {
	var latest PricePoint
	found := false
	for _, p := range series {
		if !isFinite(p.Price) || p.Price <= 0 {
			continue
		}
		if !found || p.Date.After(latest.Date) {
			latest = p
			found = true
		}
	}
	if !found {
		return PricePoint{}, fmt.Errorf("%w: no positive price in series of %d points", ErrDataUnavailable, len(series))
	}
	return latest, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
