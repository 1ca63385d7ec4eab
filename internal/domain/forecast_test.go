package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_MeanTrajectory(t *testing.T) {
	ensemble := []PriceSequence{
		{100, 101, 103},
		{100, 99, 97},
		{100, 104, 106},
	}

	f, err := Aggregate(ensemble)
	require.NoError(t, err)

	require.Len(t, f.MeanTrajectory, 3)
	assert.Equal(t, 100.0, f.MeanTrajectory[0])
	assert.InDelta(t, 101.3333333333, f.MeanTrajectory[1], 1e-9)
	assert.InDelta(t, 102.0, f.MeanTrajectory[2], 1e-9)
	assert.Equal(t, f.MeanTrajectory[2], f.Final)
	assert.Equal(t, 3, f.Paths)
	assert.Equal(t, 2, f.Steps)
}

func TestAggregate_StartInvariantIsExact(t *testing.T) {
	// 0.1 no es representable en binario; el día 0 debe seguir siendo 0.1 exacto
	const s0 = 0.1
	ensemble := make([]PriceSequence, 7)
	for i := range ensemble {
		ensemble[i] = PriceSequence{s0, s0 * float64(i+1), s0 / float64(i+1)}
	}

	f, err := Aggregate(ensemble)
	require.NoError(t, err)
	assert.Equal(t, s0, f.MeanTrajectory[0])
}

func TestAggregate_DoesNotMutateEnsemble(t *testing.T) {
	ensemble := []PriceSequence{{10, 11}, {10, 13}}
	_, err := Aggregate(ensemble)
	require.NoError(t, err)
	assert.Equal(t, PriceSequence{10, 11}, ensemble[0])
	assert.Equal(t, PriceSequence{10, 13}, ensemble[1])
}

func TestAggregate_SinglePath(t *testing.T) {
	f, err := Aggregate([]PriceSequence{{50, 51, 52}})
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 51, 52}, f.MeanTrajectory)
	assert.Equal(t, 52.0, f.FinalQuantiles.P50)
}

func TestAggregate_Quantiles(t *testing.T) {
	ensemble := make([]PriceSequence, 100)
	for i := range ensemble {
		ensemble[i] = PriceSequence{100, float64(i + 1)}
	}
	f, err := Aggregate(ensemble)
	require.NoError(t, err)
	assert.Equal(t, 5.0, f.FinalQuantiles.P5)
	assert.Equal(t, 50.0, f.FinalQuantiles.P50)
	assert.Equal(t, 95.0, f.FinalQuantiles.P95)
	assert.LessOrEqual(t, f.FinalQuantiles.P5, f.FinalQuantiles.P50)
	assert.LessOrEqual(t, f.FinalQuantiles.P50, f.FinalQuantiles.P95)
}

func TestAggregate_EmptyEnsemble(t *testing.T) {
	_, err := Aggregate(nil)
	assert.ErrorIs(t, err, ErrEmptyEnsemble)

	_, err = Aggregate([]PriceSequence{})
	assert.ErrorIs(t, err, ErrEmptyEnsemble)
}

func TestAggregate_LengthMismatch(t *testing.T) {
	_, err := Aggregate([]PriceSequence{{100, 101}, {100}})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Aggregate([]PriceSequence{{}, {}})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
