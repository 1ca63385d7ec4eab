package simulation

import (
	"fmt"
	"math"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
)

// tailSigmas es el margen de la banda de log-precios que debe ser representable.
const tailSigmas = 10

// Límites de log(P) para que exp no dé 0 ni +Inf.
var (
	minLogPrice = math.Log(0x1p-1022) // menor float64 normal
	maxLogPrice = math.Log(math.MaxFloat64)
)

// Increment is one log-normal GBM step over a horizon dt:
//
//	P' = P · exp((mu - σ²/2)·dt + σ·√dt·Z)
//
// Forecast paths use dt = 1 step with a real-world drift; terminal option
// pricing uses dt = T with the risk-free rate as drift.
type Increment struct {
	drift     float64
	diffusion float64
}

// NewIncrement precomputes the deterministic and random parts of a step.
func NewIncrement(mu, sigma, dt float64) Increment {
	return Increment{
		drift:     (mu - 0.5*sigma*sigma) * dt,
		diffusion: sigma * math.Sqrt(dt),
	}
}

// Apply advances price by one step given a standard normal draw z.
func (inc Increment) Apply(price, z float64) float64 {
	return price * math.Exp(inc.drift+inc.diffusion*z)
}

// ApplyAll overwrites z with price·exp(drift + diffusion·z) for every draw.
func (inc Increment) ApplyAll(price float64, z []float64) {
	for i, v := range z {
		z[i] = price * math.Exp(inc.drift+inc.diffusion*v)
	}
}

// checkHorizon rejects parameters whose prices would leave float64 range
// within tailSigmas standard deviations over a total horizon of t.
func checkHorizon(spot, mu, sigma, t float64) error {
	center := math.Log(spot) + (mu-0.5*sigma*sigma)*t
	band := tailSigmas * sigma * math.Sqrt(t)
	if math.IsNaN(center) || math.IsNaN(band) ||
		center-band <= minLogPrice || center+band >= maxLogPrice {
		return fmt.Errorf("%w: drift %v and volatility %v over horizon %v overflow float64 prices",
			domain.ErrInvalidParameter, mu, sigma, t)
	}
	return nil
}
