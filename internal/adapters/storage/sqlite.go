package storage

// sqlite.go: histórico de valoraciones y forecasts.
//
// Estrategia:
//   - `pricing_runs`: una fila por valoración (analítica + Monte Carlo).
//   - `forecast_runs`: una fila por forecast; la trayectoria media va
//     comprimida en un BLOB (ver chunk.go), ~4x menos que float64 crudos.
//   - Timestamps como unix nanos para que BETWEEN compare enteros.
//   - Prune automático al arrancar: filas de más de 180 días.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS pricing_runs (
    id          TEXT PRIMARY KEY,
    symbol      TEXT    NOT NULL,
    as_of       INTEGER NOT NULL,
    spot        REAL    NOT NULL,
    strike      REAL    NOT NULL,
    expiry      REAL    NOT NULL,
    rf          REAL    NOT NULL,
    volatility  REAL    NOT NULL,
    d1          REAL    NOT NULL,
    d2          REAL    NOT NULL,
    bs_call     REAL    NOT NULL,
    bs_put      REAL    NOT NULL,
    mc_call     REAL    NOT NULL,
    mc_put      REAL    NOT NULL,
    mc_call_se  REAL    NOT NULL DEFAULT 0,
    mc_put_se   REAL    NOT NULL DEFAULT 0,
    iterations  INTEGER NOT NULL,
    seed        INTEGER NOT NULL,
    created_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS forecast_runs (
    id          TEXT PRIMARY KEY,
    symbol      TEXT    NOT NULL,
    as_of       INTEGER NOT NULL,
    spot        REAL    NOT NULL,
    drift       REAL    NOT NULL,
    step_vol    REAL    NOT NULL,
    seed        INTEGER NOT NULL,
    paths       INTEGER NOT NULL,
    steps       INTEGER NOT NULL,
    final       REAL    NOT NULL,
    p5          REAL    NOT NULL,
    p50         REAL    NOT NULL,
    p95         REAL    NOT NULL,
    trajectory  BLOB    NOT NULL,
    created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pricing_created  ON pricing_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_forecast_created ON forecast_runs(created_at);
`

const retentionRuns = 180 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db, now: time.Now}
	if err := s.pruneOld(context.Background()); err != nil {
		slog.Warn("prune old runs failed", "err", err)
	}
	return s, nil
}

// SavePricing inserta una valoración y devuelve su ID.
func (s *SQLiteStorage) SavePricing(ctx context.Context, run domain.PricingRun) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}

	p := run.Params
	mc := run.MonteCarlo
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pricing_runs (
			id, symbol, as_of, spot, strike, expiry, rf, volatility, d1, d2,
			bs_call, bs_put, mc_call, mc_put, mc_call_se, mc_put_se,
			iterations, seed, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Symbol, run.AsOf.UnixNano(),
		p.Spot, p.Strike, p.Expiry, p.RiskFreeRate, p.Volatility, run.D1, run.D2,
		run.Analytic.Call, run.Analytic.Put, mc.Call, mc.Put, mc.CallStdErr, mc.PutStdErr,
		mc.Iterations, int64(mc.Seed), run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("storage.SavePricing: insert: %w", err)
	}
	return run.ID, nil
}

// SaveForecast inserta un forecast con su trayectoria media comprimida.
func (s *SQLiteStorage) SaveForecast(ctx context.Context, run domain.ForecastRun) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}

	blob, err := encodeTrajectory(run.Forecast.MeanTrajectory)
	if err != nil {
		return "", fmt.Errorf("storage.SaveForecast: %w", err)
	}

	fc := run.Forecast
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO forecast_runs (
			id, symbol, as_of, spot, drift, step_vol, seed, paths, steps,
			final, p5, p50, p95, trajectory, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Symbol, run.AsOf.UnixNano(), run.Spot, run.Drift, run.StepVolatility,
		int64(run.Seed), fc.Paths, fc.Steps,
		fc.Final, fc.FinalQuantiles.P5, fc.FinalQuantiles.P50, fc.FinalQuantiles.P95,
		blob, run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("storage.SaveForecast: insert: %w", err)
	}
	return run.ID, nil
}

// GetHistory devuelve valoraciones y forecasts creados en [from, to],
// los más antiguos primero.
func (s *SQLiteStorage) GetHistory(ctx context.Context, from, to time.Time) ([]domain.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, 'pricing', symbol, spot, bs_call, bs_put, created_at
		FROM pricing_runs
		WHERE created_at BETWEEN ? AND ?
		UNION ALL
		SELECT id, 'forecast', symbol, spot, final, final / spot - 1, created_at
		FROM forecast_runs
		WHERE created_at BETWEEN ? AND ?
		ORDER BY 7 ASC, 1 ASC
	`, from.UnixNano(), to.UnixNano(), from.UnixNano(), to.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunSummary
	for rows.Next() {
		var r domain.RunSummary
		var created int64
		if err := rows.Scan(&r.ID, &r.Kind, &r.Symbol, &r.Spot, &r.Headline, &r.Secondary, &created); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan row: %w", err)
		}
		r.CreatedAt = time.Unix(0, created).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadTrajectory devuelve la trayectoria media de un forecast guardado.
func (s *SQLiteStorage) LoadTrajectory(ctx context.Context, forecastID string) ([]float64, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT trajectory FROM forecast_runs WHERE id = ?`, forecastID,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage.LoadTrajectory %s: %w", forecastID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage.LoadTrajectory: %w", err)
	}

	values, err := decodeTrajectory(blob)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadTrajectory %s: %w", forecastID, err)
	}
	return values, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld elimina ejecuciones antiguas para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) error {
	cutoff := s.now().Add(-retentionRuns).UnixNano()
	for _, table := range []string{"pricing_runs", "forecast_runs"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE created_at < ?`, cutoff); err != nil {
			return fmt.Errorf("storage.pruneOld %s: %w", table, err)
		}
	}
	return nil
}
