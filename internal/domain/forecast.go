package domain

// forecast.go: agregación del ensemble de trayectorias simuladas.
//
// The mean is accumulated as deviations from the first path, so an index where
// every path holds the same value (day 0 always does) averages back to that
// value bit-for-bit.

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PriceSequence is one simulated trajectory: S0 at index 0 followed by one price per step.
type PriceSequence []float64

// Quantiles summarises the distribution of final-day prices across the ensemble.
type Quantiles struct {
	P5  float64 // escenario pesimista
	P50 float64 // mediana
	P95 float64 // escenario optimista
}

// Forecast is the result of aggregating an ensemble of price paths.
type Forecast struct {
	MeanTrajectory []float64
	Final          float64 // MeanTrajectory[len-1], the point forecast
	FinalQuantiles Quantiles
	Paths          int
	Steps          int
}

// Aggregate computes the elementwise mean trajectory of an ensemble and its
// final-day point forecast. The ensemble is not modified.
func Aggregate(ensemble []PriceSequence) (Forecast, error) {
	if len(ensemble) == 0 {
		return Forecast{}, fmt.Errorf("domain.Aggregate: %w", ErrEmptyEnsemble)
	}
	length := len(ensemble[0])
	if length == 0 {
		return Forecast{}, fmt.Errorf("domain.Aggregate: %w: path 0 is empty", ErrLengthMismatch)
	}
	for i, path := range ensemble {
		if len(path) != length {
			return Forecast{}, fmt.Errorf("domain.Aggregate: %w: path %d has %d points, path 0 has %d",
				ErrLengthMismatch, i, len(path), length)
		}
	}

	ref := ensemble[0]
	dev := make([]float64, length)
	diff := make([]float64, length)
	for _, path := range ensemble[1:] {
		floats.SubTo(diff, path, ref)
		floats.Add(dev, diff)
	}
	floats.Scale(1/float64(len(ensemble)), dev)

	mean := make([]float64, length)
	floats.AddTo(mean, ref, dev)

	return Forecast{
		MeanTrajectory: mean,
		Final:          mean[length-1],
		FinalQuantiles: finalQuantiles(ensemble),
		Paths:          len(ensemble),
		Steps:          length - 1,
	}, nil
}

// finalQuantiles returns the empirical 5/50/95 percentiles of the last price of every path.
func finalQuantiles(ensemble []PriceSequence) Quantiles {
	finals := make([]float64, len(ensemble))
	for i, path := range ensemble {
		finals[i] = path[len(path)-1]
	}
	sort.Float64s(finals)
	return Quantiles{
		P5:  stat.Quantile(0.05, stat.Empirical, finals, nil),
		P50: stat.Quantile(0.50, stat.Empirical, finals, nil),
		P95: stat.Quantile(0.95, stat.Empirical, finals, nil),
	}
}
