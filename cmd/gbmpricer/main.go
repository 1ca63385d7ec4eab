package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/gbmpricer/config"
	"github.com/alejandrodnm/gbmpricer/internal/adapters/fixture"
	"github.com/alejandrodnm/gbmpricer/internal/adapters/notify"
	"github.com/alejandrodnm/gbmpricer/internal/adapters/storage"
	"github.com/alejandrodnm/gbmpricer/internal/adapters/yahoo"
	"github.com/alejandrodnm/gbmpricer/internal/ports"
	"github.com/alejandrodnm/gbmpricer/internal/service"
	"github.com/alejandrodnm/gbmpricer/internal/simulation"
	"github.com/spf13/cobra"
)

// globalFlags son los flags persistentes de todos los subcomandos.
type globalFlags struct {
	configPath string
	verbose    bool
	logFormat  string
	dryRun     bool
	fixtures   string
	seed       uint64
	compact    bool
}

// app agrupa las dependencias construidas a partir de la config.
type app struct {
	cfg      *config.Config
	svc      *service.Service
	market   ports.MarketDataProvider
	store    *storage.SQLiteStorage
	storage  ports.Storage // nil en --dry-run
	sim      *simulation.Simulator
	reporter *notify.Console
	dryRun   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("gbmpricer exited with error", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "gbmpricer",
		Short:         "European option pricing and price forecasting under GBM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "config/config.yaml", "path to config file")
	pf.BoolVar(&flags.verbose, "verbose", false, "set log level to debug")
	pf.StringVar(&flags.logFormat, "format", "", "log format: text|json (overrides config)")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "use local fixtures instead of Yahoo and skip storage")
	pf.StringVar(&flags.fixtures, "fixtures", "testdata/fixtures/prices.yaml", "price fixtures used by --dry-run")
	pf.Uint64Var(&flags.seed, "seed", 0, "simulation seed (0 = config, then clock)")
	pf.BoolVar(&flags.compact, "compact", false, "print one line per result instead of tables")

	root.AddCommand(
		newPriceCmd(&flags),
		newForecastCmd(&flags),
		newWatchCmd(&flags),
		newServeCmd(&flags),
		newHistoryCmd(&flags),
	)
	return root
}

// bootstrap carga la config, configura el logger y construye el servicio.
func bootstrap(flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	if flags.verbose {
		cfg.Log.Level = "debug"
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	if flags.seed != 0 {
		cfg.Simulation.Seed = flags.seed
	}
	setupLogger(cfg.Log)

	var market ports.MarketDataProvider
	if flags.dryRun {
		fx, err := fixture.Load(flags.fixtures)
		if err != nil {
			return nil, err
		}
		market = fx
	} else {
		market = yahoo.NewClient(yahoo.Options{
			BaseURL:    cfg.API.YahooBase,
			Timeout:    cfg.APITimeout(),
			RatePerSec: cfg.API.RatePerSec,
		})
	}

	a := &app{
		cfg:      cfg,
		market:   market,
		reporter: notify.NewConsole(!flags.compact),
		dryRun:   flags.dryRun,
		sim: simulation.New(simulation.Config{
			Seed:      cfg.Simulation.Seed,
			Workers:   cfg.Simulation.Workers,
			ChunkSize: cfg.Simulation.ChunkSize,
		}),
	}

	if !flags.dryRun {
		a.store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		a.storage = a.store
	}
	a.svc = a.newService(a.reporter)

	slog.Info("gbmpricer starting",
		"config", flags.configPath,
		"symbol", cfg.Market.Symbol,
		"seed", a.sim.Seed(),
		"dry_run", flags.dryRun,
	)
	return a, nil
}

// newService construye un servicio sobre las dependencias compartidas.
// reporter puede ser nil.
func (a *app) newService(reporter ports.Reporter) *service.Service {
	return service.New(serviceConfig(a.cfg, a.dryRun), a.market, a.storage, reporter, a.sim)
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("storage close failed", "err", err)
		}
	}
}

func serviceConfig(cfg *config.Config, dryRun bool) service.Config {
	sc := service.DefaultConfig()
	sc.Symbol = cfg.Market.Symbol
	sc.Strike = cfg.Market.Strike
	sc.Expiry = cfg.Market.ExpiryYears
	sc.RiskFreeRate = *cfg.Market.RiskFreeRate
	sc.Volatility = cfg.Market.Volatility
	sc.Lookback = cfg.Lookback()
	sc.Iterations = cfg.Simulation.Iterations
	sc.Paths = cfg.Simulation.Paths
	sc.Steps = cfg.Simulation.Steps
	sc.Drift = *cfg.Simulation.Drift
	sc.StepVolatility = cfg.Simulation.StepVolatility
	sc.WatchSymbols = cfg.Watch.Symbols
	sc.WatchInterval = cfg.WatchInterval()
	sc.Concurrency = cfg.Watch.Concurrency
	sc.DryRun = dryRun
	return sc
}

// signalContext se cancela con SIGINT o SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func requireStorage(a *app) error {
	if a.store == nil {
		return fmt.Errorf("storage disabled in --dry-run mode")
	}
	return nil
}
