package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
)

// Storage persiste los resultados de cada valoración y cada forecast.
type Storage interface {
	// SavePricing persiste una valoración. Asigna un ID si run.ID está vacío
	// y lo devuelve.
	SavePricing(ctx context.Context, run domain.PricingRun) (string, error)

	// SaveForecast persiste un forecast junto con su trayectoria media comprimida.
	SaveForecast(ctx context.Context, run domain.ForecastRun) (string, error)

	// GetHistory devuelve los resúmenes registrados en el rango de tiempo dado,
	// ordenados por fecha de creación.
	GetHistory(ctx context.Context, from, to time.Time) ([]domain.RunSummary, error)

	// LoadTrajectory devuelve la trayectoria media de un forecast guardado,
	// o domain.ErrNotFound si el ID no existe.
	LoadTrajectory(ctx context.Context, forecastID string) ([]float64, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
