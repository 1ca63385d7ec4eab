package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
)

// MarketDataProvider obtiene cierres ajustados diarios de un símbolo.
type MarketDataProvider interface {
	// FetchAdjustedClose devuelve los cierres ajustados entre start y end.
	// Devuelve domain.ErrDataUnavailable si el proveedor no tiene datos.
	FetchAdjustedClose(ctx context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error)
}
