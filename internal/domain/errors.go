package domain

import "errors"

// Errors returned by the pricing and simulation engine. Callers match them
// with errors.Is; every return site wraps them with the failing field.
var (
	// ErrInvalidParameter is returned when a market or simulation parameter
	// violates its invariant (non-positive price, volatility, horizon,
	// iteration count or step count).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEmptyEnsemble is returned when aggregating zero paths.
	ErrEmptyEnsemble = errors.New("empty ensemble")

	// ErrLengthMismatch is returned when the paths of an ensemble differ in length.
	ErrLengthMismatch = errors.New("path length mismatch")

	// ErrDataUnavailable is returned when the market data provider yields no usable price.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrNotFound is returned when a persisted run does not exist.
	ErrNotFound = errors.New("run not found")
)
