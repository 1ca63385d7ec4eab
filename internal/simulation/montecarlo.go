package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// payoffSums is the partial reduction of one chunk of terminal prices.
type payoffSums struct {
	n            int
	call, callSq float64
	put, putSq   float64
}

func (a *payoffSums) merge(b payoffSums) {
	a.n += b.n
	a.call += b.call
	a.callSq += b.callSq
	a.put += b.put
	a.putSq += b.putSq
}

// PriceOption estimates European call and put values from iterations
// risk-neutral terminal prices drawn in a single step:
//
//	S_T = S0 · exp(T·(rf - σ²/2) + σ·√T·Z)
//
// Call and put are evaluated on the same terminal sample. Each call draws
// fresh samples from the simulator's stream.
func (s *Simulator) PriceOption(ctx context.Context, p domain.MarketParameters, iterations int) (domain.MonteCarloResult, error) {
	if iterations <= 0 {
		return domain.MonteCarloResult{}, fmt.Errorf("simulation.PriceOption: %w: iterations must be positive, got %d",
			domain.ErrInvalidParameter, iterations)
	}
	if err := p.Validate(); err != nil {
		return domain.MonteCarloResult{}, fmt.Errorf("simulation.PriceOption: %w", err)
	}
	if err := checkHorizon(p.Spot, p.RiskFreeRate, p.Volatility, p.Expiry); err != nil {
		return domain.MonteCarloResult{}, fmt.Errorf("simulation.PriceOption: %w", err)
	}

	inc := NewIncrement(p.RiskFreeRate, p.Volatility, p.Expiry)
	chunks := splitChunks(iterations, s.cfg.ChunkSize, s.childSeeds(chunkCount(iterations, s.cfg.ChunkSize)))

	partials, err := runChunks(ctx, chunks, s.cfg.Workers, func(c chunk, rng *rand.Rand) payoffSums {
		terminal := make([]float64, c.size)
		for i := range terminal {
			terminal[i] = rng.NormFloat64()
		}
		inc.ApplyAll(p.Spot, terminal)
		return sumPayoffs(terminal, p.Strike)
	})
	if err != nil {
		return domain.MonteCarloResult{}, fmt.Errorf("simulation.PriceOption: %w", err)
	}

	var total payoffSums
	for _, part := range partials {
		total.merge(part)
	}

	disc := p.DiscountFactor()
	n := float64(total.n)
	res := domain.MonteCarloResult{
		PricingResult: domain.PricingResult{
			Call: disc * total.call / n,
			Put:  disc * total.put / n,
		},
		Iterations: total.n,
		Seed:       s.seed,
		CallStdErr: disc * stdErr(total.call, total.callSq, total.n),
		PutStdErr:  disc * stdErr(total.put, total.putSq, total.n),
	}

	slog.Debug("monte carlo complete",
		"iterations", total.n,
		"chunks", len(chunks),
		"call", res.Call,
		"put", res.Put,
	)
	return res, nil
}

// sumPayoffs returns Σmax(0, S-E), Σmax(0, E-S) and their squares over one chunk.
func sumPayoffs(terminal []float64, strike float64) payoffSums {
	calls := make([]float64, len(terminal))
	puts := make([]float64, len(terminal))
	for i, st := range terminal {
		calls[i] = math.Max(st-strike, 0)
		puts[i] = math.Max(strike-st, 0)
	}
	return payoffSums{
		n:      len(terminal),
		call:   floats.Sum(calls),
		callSq: floats.Dot(calls, calls),
		put:    floats.Sum(puts),
		putSq:  floats.Dot(puts, puts),
	}
}

// stdErr returns the standard error of the mean from running sums.
func stdErr(sum, sumSq float64, n int) float64 {
	if n < 2 {
		return 0
	}
	fn := float64(n)
	mean := sum / fn
	variance := (sumSq - fn*mean*mean) / (fn - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance / fn)
}
