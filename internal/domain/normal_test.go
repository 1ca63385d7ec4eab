package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalCDF_Center(t *testing.T) {
	assert.Equal(t, 0.5, NormalCDF(0))
}

func TestNormalCDF_KnownValues(t *testing.T) {
	assert.InDelta(t, 0.8413447460685429, NormalCDF(1), 1e-12)
	assert.InDelta(t, 0.9750021048517795, NormalCDF(1.96), 1e-12)
	assert.InDelta(t, 0.0227501319481792, NormalCDF(-2), 1e-12)
}

func TestNormalCDF_Symmetry(t *testing.T) {
	for _, x := range []float64{0.1, 0.5, 1, 2.5, 5, 10, 30} {
		assert.InDelta(t, 1-NormalCDF(x), NormalCDF(-x), 1e-15, "x=%v", x)
	}
}

func TestNormalCDF_Monotonic(t *testing.T) {
	prev := NormalCDF(-45)
	for x := -45.0; x <= 45; x += 0.25 {
		cur := NormalCDF(x)
		assert.GreaterOrEqual(t, cur, prev, "x=%v", x)
		prev = cur
	}
}

func TestNormalCDF_Tails(t *testing.T) {
	assert.Equal(t, 1.0, NormalCDF(41))
	assert.Equal(t, 0.0, NormalCDF(-41))
	assert.Equal(t, 1.0, NormalCDF(math.Inf(1)))
	assert.Equal(t, 0.0, NormalCDF(math.Inf(-1)))
	assert.InDelta(t, 1.0, NormalCDF(39), 1e-15)
	assert.InDelta(t, 0.0, NormalCDF(-39), 1e-15)
}
