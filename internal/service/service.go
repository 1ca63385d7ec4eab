// Package service orquesta el motor de pricing: resuelve S0 con el proveedor
// de mercado, ejecuta Black-Scholes, Monte Carlo y forecasts, y entrega los
// resultados al reporter y al storage.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
	"github.com/alejandrodnm/gbmpricer/internal/ports"
	"github.com/alejandrodnm/gbmpricer/internal/simulation"
)

// Config contiene los valores por defecto de cada petición y del loop watch.
type Config struct {
	Symbol       string
	Strike       float64 // 0 = at-the-money sobre S0
	Expiry       float64
	RiskFreeRate float64
	Volatility   float64
	Lookback     time.Duration

	Iterations     int
	Paths          int
	Steps          int
	Drift          float64
	StepVolatility float64

	WatchSymbols  []string
	WatchInterval time.Duration
	Concurrency   int
	DryRun        bool
}

// DefaultConfig devuelve los parámetros de los scripts de referencia.
func DefaultConfig() Config {
	return Config{
		Symbol:         "CCF",
		Expiry:         1,
		RiskFreeRate:   0.0355,
		Volatility:     0.2,
		Lookback:       7 * 24 * time.Hour,
		Iterations:     100_000,
		Paths:          1000,
		Steps:          domain.DefaultForecastSteps,
		Drift:          0.0002,
		StepVolatility: 0.01,
		WatchInterval:  5 * time.Minute,
		Concurrency:    4,
	}
}

// PriceRequest describe una valoración. Un campo nil toma el valor de Config;
// un cero explícito se valida tal cual. Spot a cero se resuelve con el
// proveedor de mercado y Strike nil con Config.Strike a cero es at-the-money.
type PriceRequest struct {
	Symbol       string   `json:"symbol"`
	Spot         float64  `json:"spot"`
	Strike       *float64 `json:"strike"`
	Expiry       *float64 `json:"expiry"`
	RiskFreeRate *float64 `json:"risk_free_rate"`
	Volatility   *float64 `json:"volatility"`
	Iterations   *int     `json:"iterations"`
}

// ForecastRequest describe un forecast bajo drift real. Mismas reglas que
// PriceRequest para los campos nil.
type ForecastRequest struct {
	Symbol         string   `json:"symbol"`
	Spot           float64  `json:"spot"`
	Drift          *float64 `json:"drift"`
	StepVolatility *float64 `json:"step_volatility"`
	Paths          *int     `json:"paths"`
	Steps          *int     `json:"steps"`
}

// Service es el orquestador principal.
type Service struct {
	cfg      Config
	market   ports.MarketDataProvider
	storage  ports.Storage
	reporter ports.Reporter
	sim      *simulation.Simulator
	now      func() time.Time
}

// New crea un Service con todas las dependencias inyectadas.
// storage y reporter pueden ser nil.
func New(
	cfg Config,
	market ports.MarketDataProvider,
	storage ports.Storage,
	reporter ports.Reporter,
	sim *simulation.Simulator,
) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Service{
		cfg:      cfg,
		market:   market,
		storage:  storage,
		reporter: reporter,
		sim:      sim,
		now:      time.Now,
	}
}

// Price valora una call y una put europeas con Black-Scholes y con Monte
// Carlo sobre los mismos parámetros.
func (s *Service) Price(ctx context.Context, req PriceRequest) (domain.PricingRun, error) {
	run, err := s.price(ctx, req)
	if err != nil {
		return domain.PricingRun{}, err
	}
	s.publishPricing(ctx, &run)
	return run, nil
}

func (s *Service) price(ctx context.Context, req PriceRequest) (domain.PricingRun, error) {
	start := s.now()
	params, symbol, asOf, iterations, err := s.pricingInputs(ctx, req)
	if err != nil {
		return domain.PricingRun{}, err
	}

	d1, d2, err := domain.BlackScholesTerms(params)
	if err != nil {
		return domain.PricingRun{}, fmt.Errorf("service.Price: %w", err)
	}
	analytic, err := domain.BlackScholes(params)
	if err != nil {
		return domain.PricingRun{}, fmt.Errorf("service.Price: %w", err)
	}
	mc, err := s.sim.PriceOption(ctx, params, iterations)
	if err != nil {
		return domain.PricingRun{}, fmt.Errorf("service.Price: %w", err)
	}

	run := domain.PricingRun{
		Symbol:     symbol,
		AsOf:       asOf,
		Params:     params,
		D1:         d1,
		D2:         d2,
		Analytic:   analytic,
		MonteCarlo: mc,
		CreatedAt:  s.now().UTC(),
	}

	slog.Info("pricing complete",
		"symbol", symbol,
		"spot", params.Spot,
		"strike", params.Strike,
		"call", analytic.Call,
		"put", analytic.Put,
		"mc_call_rel_err", run.CallRelError(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return run, nil
}

// Forecast simula un ensemble de trayectorias diarias desde S0 y devuelve la
// trayectoria media y el precio previsto.
func (s *Service) Forecast(ctx context.Context, req ForecastRequest) (domain.ForecastRun, error) {
	start := s.now()
	symbol := s.symbolOr(req.Symbol)
	spot, asOf, err := s.resolveSpot(ctx, symbol, req.Spot)
	if err != nil {
		return domain.ForecastRun{}, fmt.Errorf("service.Forecast: %w", err)
	}

	p := simulation.PathParams{
		Spot:       spot,
		Drift:      valueOr(req.Drift, s.cfg.Drift),
		Volatility: valueOr(req.StepVolatility, s.cfg.StepVolatility),
		Steps:      valueOr(req.Steps, s.cfg.Steps),
	}
	paths := valueOr(req.Paths, s.cfg.Paths)

	ensemble, err := s.sim.Paths(ctx, p, paths)
	if err != nil {
		return domain.ForecastRun{}, fmt.Errorf("service.Forecast: %w", err)
	}
	fc, err := domain.Aggregate(ensemble)
	if err != nil {
		return domain.ForecastRun{}, fmt.Errorf("service.Forecast: %w", err)
	}

	run := domain.ForecastRun{
		Symbol:         symbol,
		AsOf:           asOf,
		Spot:           spot,
		Drift:          p.Drift,
		StepVolatility: p.Volatility,
		Seed:           s.sim.Seed(),
		Forecast:       fc,
		CreatedAt:      s.now().UTC(),
	}

	if s.storage != nil && !s.cfg.DryRun {
		id, err := s.storage.SaveForecast(ctx, run)
		if err != nil {
			slog.Warn("storage error", "err", err)
		}
		run.ID = id
	}
	if s.reporter != nil {
		if err := s.reporter.ReportForecast(ctx, run); err != nil {
			slog.Warn("reporter error", "err", err)
		}
	}

	slog.Info("forecast complete",
		"symbol", symbol,
		"spot", spot,
		"final", fc.Final,
		"paths", fc.Paths,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return run, nil
}

// History devuelve y reporta las ejecuciones persistidas desde since.
func (s *Service) History(ctx context.Context, since time.Duration) ([]domain.RunSummary, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("service.History: storage disabled")
	}
	now := s.now()
	runs, err := s.storage.GetHistory(ctx, now.Add(-since), now)
	if err != nil {
		return nil, fmt.Errorf("service.History: %w", err)
	}
	if s.reporter != nil {
		if err := s.reporter.ReportHistory(ctx, runs); err != nil {
			slog.Warn("reporter error", "err", err)
		}
	}
	return runs, nil
}

// publishPricing persiste y reporta una valoración. Los fallos se registran
// pero no invalidan el resultado.
func (s *Service) publishPricing(ctx context.Context, run *domain.PricingRun) {
	if s.storage != nil && !s.cfg.DryRun {
		id, err := s.storage.SavePricing(ctx, *run)
		if err != nil {
			slog.Warn("storage error", "err", err)
		}
		run.ID = id
	}
	if s.reporter != nil {
		if err := s.reporter.ReportPricing(ctx, *run); err != nil {
			slog.Warn("reporter error", "err", err)
		}
	}
}

// pricingInputs completa la petición con la config y resuelve S0.
func (s *Service) pricingInputs(ctx context.Context, req PriceRequest) (domain.MarketParameters, string, time.Time, int, error) {
	symbol := s.symbolOr(req.Symbol)
	spot, asOf, err := s.resolveSpot(ctx, symbol, req.Spot)
	if err != nil {
		return domain.MarketParameters{}, "", time.Time{}, 0, fmt.Errorf("service.Price: %w", err)
	}

	params := domain.MarketParameters{
		Spot:         spot,
		Strike:       valueOr(req.Strike, s.cfg.Strike),
		Expiry:       valueOr(req.Expiry, s.cfg.Expiry),
		RiskFreeRate: valueOr(req.RiskFreeRate, s.cfg.RiskFreeRate),
		Volatility:   valueOr(req.Volatility, s.cfg.Volatility),
	}
	// at-the-money solo si nadie pidió un strike
	if req.Strike == nil && s.cfg.Strike == 0 {
		params.Strike = spot
	}
	return params, symbol, asOf, valueOr(req.Iterations, s.cfg.Iterations), nil
}

// resolveSpot devuelve spot si es explícito; si no, el último cierre ajustado
// dentro de la ventana de lookback.
func (s *Service) resolveSpot(ctx context.Context, symbol string, spot float64) (float64, time.Time, error) {
	now := s.now()
	if spot != 0 {
		return spot, now.UTC(), nil
	}
	if symbol == "" {
		return 0, time.Time{}, fmt.Errorf("%w: symbol or spot required", domain.ErrInvalidParameter)
	}
	if s.market == nil {
		return 0, time.Time{}, fmt.Errorf("%w: no market data provider", domain.ErrDataUnavailable)
	}

	series, err := s.market.FetchAdjustedClose(ctx, symbol, now.Add(-s.cfg.Lookback), now)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	latest, err := domain.LatestPrice(series)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	slog.Debug("spot resolved", "symbol", symbol, "spot", latest.Price, "as_of", latest.Date)
	return latest.Price, latest.Date, nil
}

func (s *Service) symbolOr(symbol string) string {
	if symbol == "" {
		return s.cfg.Symbol
	}
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// valueOr devuelve *v, o def si la petición no trae el campo.
func valueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
