package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de gbmpricer.
type Config struct {
	Market     MarketConfig     `yaml:"market"`
	Simulation SimulationConfig `yaml:"simulation"`
	API        APIConfig        `yaml:"api"`
	Storage    StorageConfig    `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
	Watch      WatchConfig      `yaml:"watch"`
	Log        LogConfig        `yaml:"log"`
}

// MarketConfig contiene los parámetros de la opción a valorar.
type MarketConfig struct {
	Symbol       string   `yaml:"symbol"`
	Strike       float64  `yaml:"strike"`         // 0 = at-the-money sobre S0
	ExpiryYears  float64  `yaml:"expiry_years"`
	RiskFreeRate *float64 `yaml:"risk_free_rate"` // puntero: 0 es un tipo válido
	Volatility   float64  `yaml:"volatility"`     // sigma anualizada
	LookbackDays int      `yaml:"lookback_days"`  // ventana para buscar el último cierre
}

// SimulationConfig dimensiona Monte Carlo y los forecasts.
type SimulationConfig struct {
	Iterations     int      `yaml:"iterations"`      // draws terminales para pricing
	Paths          int      `yaml:"paths"`           // trayectorias por forecast
	Steps          int      `yaml:"steps"`           // días de trading por trayectoria
	Drift          *float64 `yaml:"drift"`           // mu diario, NO es el tipo libre de riesgo
	StepVolatility float64  `yaml:"step_volatility"` // sigma diaria
	Seed           uint64   `yaml:"seed"`            // 0 = reloj
	Workers        int      `yaml:"workers"`         // 0 = NumCPU
	ChunkSize      int      `yaml:"chunk_size"`
}

// APIConfig controla el cliente de Yahoo Finance.
type APIConfig struct {
	YahooBase      string  `yaml:"yahoo_base"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RatePerSec     float64 `yaml:"rate_per_sec"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// ServerConfig controla la API HTTP.
type ServerConfig struct {
	Port      string `yaml:"port"`
	AccessLog bool   `yaml:"access_log"`
}

// WatchConfig controla el loop de revaloración.
type WatchConfig struct {
	IntervalSeconds int      `yaml:"interval_seconds"`
	Symbols         []string `yaml:"symbols"` // vacío = market.symbol
	Concurrency     int      `yaml:"concurrency"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
// Un path vacío arranca solo con defaults y entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	return &cfg, nil
}

// WatchInterval devuelve el intervalo del loop watch como time.Duration.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.IntervalSeconds) * time.Second
}

// Lookback devuelve la ventana de búsqueda de S0.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Market.LookbackDays) * 24 * time.Hour
}

// APITimeout devuelve el timeout HTTP del cliente de mercado.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("GBM_SYMBOL"); v != "" {
		cfg.Market.Symbol = strings.ToUpper(v)
	}
	if v := os.Getenv("GBM_YAHOO_BASE"); v != "" {
		cfg.API.YahooBase = v
	}
	if v := os.Getenv("GBM_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("GBM_SEED: %w", err)
		}
		cfg.Simulation.Seed = seed
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
// Los defaults de mercado y simulación son los de los scripts originales de pricing.
func setDefaults(cfg *Config) {
	if cfg.Market.Symbol == "" {
		cfg.Market.Symbol = "CCF"
	}
	if cfg.Market.ExpiryYears <= 0 {
		cfg.Market.ExpiryYears = 1
	}
	if cfg.Market.RiskFreeRate == nil {
		rf := 0.0355
		cfg.Market.RiskFreeRate = &rf
	}
	if cfg.Market.Volatility <= 0 {
		cfg.Market.Volatility = 0.2
	}
	if cfg.Market.LookbackDays <= 0 {
		cfg.Market.LookbackDays = 7
	}
	if cfg.Simulation.Iterations <= 0 {
		cfg.Simulation.Iterations = 100_000
	}
	if cfg.Simulation.Paths <= 0 {
		cfg.Simulation.Paths = 1000
	}
	if cfg.Simulation.Steps <= 0 {
		cfg.Simulation.Steps = 252
	}
	if cfg.Simulation.Drift == nil {
		mu := 0.0002
		cfg.Simulation.Drift = &mu
	}
	if cfg.Simulation.StepVolatility <= 0 {
		cfg.Simulation.StepVolatility = 0.01
	}
	if cfg.Simulation.ChunkSize <= 0 {
		cfg.Simulation.ChunkSize = 8192
	}
	if cfg.API.YahooBase == "" {
		cfg.API.YahooBase = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 10
	}
	if cfg.API.RatePerSec <= 0 {
		cfg.API.RatePerSec = 2
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "gbmpricer.db"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Watch.IntervalSeconds <= 0 {
		cfg.Watch.IntervalSeconds = 300
	}
	if cfg.Watch.Concurrency <= 0 {
		cfg.Watch.Concurrency = 4
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
