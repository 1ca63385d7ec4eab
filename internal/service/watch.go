package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
	"golang.org/x/sync/errgroup"
)

// PriceMany valora varias peticiones en paralelo, con como mucho
// cfg.Concurrency en vuelo. Los resultados siguen el orden de reqs. El primer
// error cancela el resto.
func (s *Service) PriceMany(ctx context.Context, reqs []PriceRequest) ([]domain.PricingRun, error) {
	runs := make([]domain.PricingRun, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			run, err := s.price(gctx, req)
			if err != nil {
				return fmt.Errorf("%s: %w", s.symbolOr(req.Symbol), err)
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("service.PriceMany: %w", err)
	}

	// publicar en orden, fuera de las goroutines
	for i := range runs {
		s.publishPricing(ctx, &runs[i])
	}
	return runs, nil
}

// Run ejecuta el loop watch hasta que el contexto se cancele: cada intervalo
// revalora los símbolos configurados con S0 actualizado.
// Si cfg.DryRun está activo, solo ejecuta un ciclo.
func (s *Service) Run(ctx context.Context) error {
	slog.Info("watch starting",
		"symbols", s.watchSymbols(),
		"interval", s.cfg.WatchInterval,
		"dry_run", s.cfg.DryRun,
	)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("watch cycle failed", "err", err)
		if s.cfg.DryRun {
			return err
		}
	}

	if s.cfg.DryRun {
		return nil
	}

	ticker := time.NewTicker(s.cfg.WatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("watch cycle failed", "err", err)
			}
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	start := time.Now()
	symbols := s.watchSymbols()
	reqs := make([]PriceRequest, len(symbols))
	for i, sym := range symbols {
		reqs[i] = PriceRequest{Symbol: sym}
	}

	runs, err := s.PriceMany(ctx, reqs)
	if err != nil {
		return err
	}

	slog.Info("watch cycle complete",
		"symbols", len(runs),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func (s *Service) watchSymbols() []string {
	if len(s.cfg.WatchSymbols) > 0 {
		return s.cfg.WatchSymbols
	}
	return []string{s.cfg.Symbol}
}
