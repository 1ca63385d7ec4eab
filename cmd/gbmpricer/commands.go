package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/gbmpricer/internal/adapters/httpapi"
	"github.com/alejandrodnm/gbmpricer/internal/service"
	"github.com/spf13/cobra"
)

func newPriceCmd(flags *globalFlags) *cobra.Command {
	var (
		req     service.PriceRequest
		symbols []string
	)
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a European call and put with Black-Scholes and Monte Carlo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := signalContext()
			defer cancel()

			if len(symbols) > 1 {
				reqs := make([]service.PriceRequest, len(symbols))
				for i, sym := range symbols {
					reqs[i] = req
					reqs[i].Symbol = strings.TrimSpace(sym)
				}
				_, err = a.svc.PriceMany(ctx, reqs)
				return err
			}
			if len(symbols) == 1 {
				req.Symbol = symbols[0]
			}
			_, err = a.svc.Price(ctx, req)
			return err
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&symbols, "symbol", nil, "ticker(s) to price; several run concurrently (default: config)")
	f.Float64Var(&req.Spot, "spot", 0, "S0 override (0 = latest adjusted close)")
	f.Func("strike", "strike E (config if unset; at-the-money if config has none)", floatOpt(&req.Strike))
	f.Func("expiry", "time to expiry in years (config if unset)", floatOpt(&req.Expiry))
	f.Func("volatility", "annualised volatility (config if unset)", floatOpt(&req.Volatility))
	f.Func("iterations", "Monte Carlo draws (config if unset)", intOpt(&req.Iterations))
	f.Func("rf", "risk-free rate (config if unset)", floatOpt(&req.RiskFreeRate))
	return cmd
}

func newForecastCmd(flags *globalFlags) *cobra.Command {
	var req service.ForecastRequest
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast a stock price by averaging simulated GBM paths",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := signalContext()
			defer cancel()

			_, err = a.svc.Forecast(ctx, req)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Symbol, "symbol", "", "ticker (default: config)")
	f.Float64Var(&req.Spot, "spot", 0, "S0 override (0 = latest adjusted close)")
	f.Func("paths", "number of simulated paths (config if unset)", intOpt(&req.Paths))
	f.Func("steps", "trading days per path (config if unset)", intOpt(&req.Steps))
	f.Func("step-vol", "daily volatility (config if unset)", floatOpt(&req.StepVolatility))
	f.Func("drift", "daily real-world drift mu (config if unset)", floatOpt(&req.Drift))
	return cmd
}

func newWatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-price the configured symbols on an interval until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := signalContext()
			defer cancel()

			if err := a.svc.Run(ctx); err != nil {
				return err
			}
			slog.Info("gbmpricer stopped cleanly")
			return nil
		},
	}
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the pricing engine over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer a.close()

			// la API no imprime tablas: servicio sin reporter
			server := httpapi.NewApp(a.newService(nil), a.storage, a.cfg.Server.AccessLog)

			ctx, cancel := signalContext()
			defer cancel()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("http api listening", "port", a.cfg.Server.Port)
				errCh <- server.Listen(":" + a.cfg.Server.Port)
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("shutting down http api")
			shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
			defer stop()
			return server.ShutdownWithContext(shutdownCtx)
		},
	}
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	var hours int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List persisted pricing and forecast runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer a.close()
			if err := requireStorage(a); err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			_, err = a.svc.History(ctx, time.Duration(hours)*time.Hour)
			return err
		},
	}
	cmd.Flags().IntVar(&hours, "hours", 24, "look back this many hours")
	return cmd
}

// floatOpt e intOpt rellenan un campo opcional de la petición solo cuando el
// flag aparece, así un 0 explícito llega al servicio y se valida.
func floatOpt(dst **float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}
}

func intOpt(dst **int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}
}
