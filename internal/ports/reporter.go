package ports

import (
	"context"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
)

// Reporter presenta los resultados al usuario.
type Reporter interface {
	// ReportPricing muestra call y put analíticas junto a la estimación Monte Carlo.
	ReportPricing(ctx context.Context, run domain.PricingRun) error

	// ReportForecast muestra la trayectoria media y el precio previsto.
	ReportForecast(ctx context.Context, run domain.ForecastRun) error

	// ReportHistory lista las ejecuciones persistidas.
	ReportHistory(ctx context.Context, runs []domain.RunSummary) error
}
