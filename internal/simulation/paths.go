package simulation

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"math"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
	"golang.org/x/exp/rand"
)

// PathParams describes a real-world GBM forecast. Drift and Volatility are per
// step (one trading day by default), not annualised, and Drift is an estimate
// of the asset's own drift, never the risk-free rate.
type PathParams struct {
	Spot       float64
	Drift      float64
	Volatility float64
	Steps      int
}

// Validate checks S0 > 0, steps > 0, volatility ≥ 0 and finite drift, and that
// prices over the whole horizon stay strictly positive and finite.
func (p PathParams) Validate() error {
	if math.IsNaN(p.Spot) || math.IsInf(p.Spot, 0) || p.Spot <= 0 {
		return fmt.Errorf("%w: spot must be positive, got %v", domain.ErrInvalidParameter, p.Spot)
	}
	if p.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", domain.ErrInvalidParameter, p.Steps)
	}
	if math.IsNaN(p.Volatility) || math.IsInf(p.Volatility, 0) || p.Volatility < 0 {
		return fmt.Errorf("%w: volatility must be non-negative, got %v", domain.ErrInvalidParameter, p.Volatility)
	}
	if math.IsNaN(p.Drift) || math.IsInf(p.Drift, 0) {
		return fmt.Errorf("%w: drift must be finite, got %v", domain.ErrInvalidParameter, p.Drift)
	}
	return checkHorizon(p.Spot, p.Drift, p.Volatility, float64(p.Steps))
}

// Path returns one lazily generated trajectory of Steps+1 prices starting at
// Spot. The sequence can be ranged over once; later ranges yield nothing.
// A new call draws a new, independent trajectory.
func (s *Simulator) Path(p PathParams) (iter.Seq[float64], error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("simulation.Path: %w", err)
	}

	rng := newRand(s.childSeeds(1)[0])
	inc := NewIncrement(p.Drift, p.Volatility, 1)
	consumed := false

	return func(yield func(float64) bool) {
		if consumed {
			return
		}
		consumed = true
		walk(p.Spot, p.Steps, inc, rng, yield)
	}, nil
}

// Paths generates iterations independent trajectories of Steps+1 prices each.
func (s *Simulator) Paths(ctx context.Context, p PathParams, iterations int) ([]domain.PriceSequence, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("simulation.Paths: %w", err)
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("simulation.Paths: %w: iterations must be positive, got %d",
			domain.ErrInvalidParameter, iterations)
	}

	perChunk := pathsPerChunk(s.cfg.ChunkSize, p.Steps)
	chunks := splitChunks(iterations, perChunk, s.childSeeds(chunkCount(iterations, perChunk)))
	inc := NewIncrement(p.Drift, p.Volatility, 1)

	ensemble := make([]domain.PriceSequence, iterations)
	_, err := runChunks(ctx, chunks, s.cfg.Workers, func(c chunk, rng *rand.Rand) struct{} {
		// cada chunk escribe en su propio rango del ensemble, sin solaparse
		for i := c.start; i < c.start+c.size; i++ {
			seq := make(domain.PriceSequence, 0, p.Steps+1)
			walk(p.Spot, p.Steps, inc, rng, func(price float64) bool {
				seq = append(seq, price)
				return true
			})
			ensemble[i] = seq
		}
		return struct{}{}
	})
	if err != nil {
		return nil, fmt.Errorf("simulation.Paths: %w", err)
	}

	slog.Debug("paths simulated",
		"paths", iterations,
		"steps", p.Steps,
		"chunks", len(chunks),
	)
	return ensemble, nil
}

// walk yields spot followed by steps GBM increments, stopping early if yield returns false.
func walk(spot float64, steps int, inc Increment, rng *rand.Rand, yield func(float64) bool) {
	price := spot
	if !yield(price) {
		return
	}
	for t := 0; t < steps; t++ {
		price = inc.Apply(price, rng.NormFloat64())
		if !yield(price) {
			return
		}
	}
}

// pathsPerChunk sizes chunks so each holds roughly chunkSize normal draws.
func pathsPerChunk(chunkSize, steps int) int {
	n := chunkSize / steps
	if n < 1 {
		return 1
	}
	return n
}
