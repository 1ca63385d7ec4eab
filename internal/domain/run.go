package domain

import (
	"math"
	"time"
)

// PricingRun is one cross-validated valuation: the closed-form price next to
// the Monte Carlo estimate for the same parameters.
type PricingRun struct {
	ID         string
	Symbol     string
	AsOf       time.Time // fecha del cierre ajustado usado como S0
	Params     MarketParameters
	D1, D2     float64
	Analytic   PricingResult
	MonteCarlo MonteCarloResult
	CreatedAt  time.Time
}

// MonteCarloResult is a Monte Carlo estimate together with its sampling error.
type MonteCarloResult struct {
	PricingResult
	Iterations int
	Seed       uint64
	CallStdErr float64 // desviación típica del payoff descontado / √n
	PutStdErr  float64
}

// CallRelError returns |MC call - analytic call| / analytic call.
// Returns 0 when the analytic call is 0 and the estimate agrees, +Inf otherwise.
func (r PricingRun) CallRelError() float64 {
	return relError(r.MonteCarlo.Call, r.Analytic.Call)
}

// PutRelError returns |MC put - analytic put| / analytic put.
func (r PricingRun) PutRelError() float64 {
	return relError(r.MonteCarlo.Put, r.Analytic.Put)
}

// ForecastRun is one multi-day price forecast under real-world drift.
type ForecastRun struct {
	ID             string
	Symbol         string
	AsOf           time.Time
	Spot           float64
	Drift          float64 // mu por paso, no es el tipo libre de riesgo
	StepVolatility float64
	Seed           uint64
	Forecast       Forecast
	CreatedAt      time.Time
}

// ExpectedReturn returns the point forecast relative to spot (0.05 = +5%).
func (r ForecastRun) ExpectedReturn() float64 {
	if r.Spot <= 0 {
		return 0
	}
	return r.Forecast.Final/r.Spot - 1
}

// RunSummary is the persisted headline of a run, used for history listings.
type RunSummary struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // "pricing" | "forecast"
	Symbol    string    `json:"symbol"`
	Spot      float64   `json:"spot"`
	Headline  float64   `json:"headline"`  // call analítica o forecast final
	Secondary float64   `json:"secondary"` // put analítica o retorno esperado
	CreatedAt time.Time `json:"created_at"`
}

func relError(estimate, reference float64) float64 {
	if reference == 0 {
		if estimate == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(estimate-reference) / math.Abs(reference)
}
