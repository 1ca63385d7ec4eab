package domain

import "gonum.org/v1/gonum/stat/distuv"

// cdfClamp is the |x| beyond which NormalCDF returns exactly 0 or 1.
const cdfClamp = 40.0

// NormalCDF returns the standard normal cumulative distribution at x.
func NormalCDF(x float64) float64 {
	switch {
	case x > cdfClamp:
		return 1
	case x < -cdfClamp:
		return 0
	}
	return distuv.UnitNormal.CDF(x)
}
