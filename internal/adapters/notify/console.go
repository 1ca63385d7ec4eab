package notify

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

// forecastCheckpoints son los días de la trayectoria media que se muestran:
// hoy, ~1 mes, ~3 meses, ~6 meses y el final.
var forecastCheckpoints = []int{0, 21, 63, 126}

// Console implementa ports.Reporter.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un reporter que escribe a stdout.
// table=false imprime una línea por resultado.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// ReportPricing imprime la valoración analítica junto a la de Monte Carlo.
func (c *Console) ReportPricing(_ context.Context, run domain.PricingRun) error {
	if !c.table {
		fmt.Fprintf(c.out, "[%s] %s S0=%s E=%s T=%gy call=%s put=%s mc_call=%s mc_put=%s\n",
			clock(run.CreatedAt), run.Symbol,
			money(run.Params.Spot, 2), money(run.Params.Strike, 2), run.Params.Expiry,
			money(run.Analytic.Call, 4), money(run.Analytic.Put, 4),
			money(run.MonteCarlo.Call, 4), money(run.MonteCarlo.Put, 4))
		return nil
	}

	p := run.Params
	fmt.Fprintf(c.out, "\n[%s] %s  S0=%s (close %s)  E=%s  T=%gy  rf=%s  σ=%s\n",
		clock(run.CreatedAt), run.Symbol,
		money(p.Spot, 2), run.AsOf.Format(time.DateOnly), money(p.Strike, 2),
		p.Expiry, pct(p.RiskFreeRate), pct(p.Volatility))
	fmt.Fprintf(c.out, "  d1=%.6f  d2=%.6f\n", run.D1, run.D2)

	table := tablewriter.NewWriter(c.out)
	table.Header("Option", "Black-Scholes", "Monte Carlo", "Std err", "Rel err")
	if err := table.Append("Call",
		money(run.Analytic.Call, 4), money(run.MonteCarlo.Call, 4),
		money(run.MonteCarlo.CallStdErr, 4), relLabel(run.CallRelError())); err != nil {
		return fmt.Errorf("notify.ReportPricing: %w", err)
	}
	if err := table.Append("Put",
		money(run.Analytic.Put, 4), money(run.MonteCarlo.Put, 4),
		money(run.MonteCarlo.PutStdErr, 4), relLabel(run.PutRelError())); err != nil {
		return fmt.Errorf("notify.ReportPricing: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("notify.ReportPricing: %w", err)
	}

	fmt.Fprintf(c.out, "  Monte Carlo: %d iteraciones, seed=%d\n", run.MonteCarlo.Iterations, run.MonteCarlo.Seed)
	return nil
}

// ReportForecast imprime la trayectoria media en puntos de control y el
// precio previsto al final del horizonte.
func (c *Console) ReportForecast(_ context.Context, run domain.ForecastRun) error {
	fc := run.Forecast
	if !c.table {
		fmt.Fprintf(c.out, "[%s] %s S0=%s forecast=%s (%s) p5=%s p95=%s\n",
			clock(run.CreatedAt), run.Symbol, money(run.Spot, 2), money(fc.Final, 2),
			signedPct(run.ExpectedReturn()), money(fc.FinalQuantiles.P5, 2), money(fc.FinalQuantiles.P95, 2))
		return nil
	}

	fmt.Fprintf(c.out, "\n[%s] %s  S0=%s (close %s)  mu=%g/día  σ=%g/día  %d trayectorias × %d días\n",
		clock(run.CreatedAt), run.Symbol, money(run.Spot, 2), run.AsOf.Format(time.DateOnly),
		run.Drift, run.StepVolatility, fc.Paths, fc.Steps)

	table := tablewriter.NewWriter(c.out)
	table.Header("Day", "Mean price", "vs S0")
	for _, day := range checkpoints(fc.Steps) {
		v := fc.MeanTrajectory[day]
		if err := table.Append(fmt.Sprintf("%d", day), money(v, 2), signedPct(v/run.Spot-1)); err != nil {
			return fmt.Errorf("notify.ReportForecast: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("notify.ReportForecast: %w", err)
	}

	fmt.Fprintf(c.out, "  Prediction for future stock price: %s (%s)\n", money(fc.Final, 2), signedPct(run.ExpectedReturn()))
	fmt.Fprintf(c.out, "  Rango final P5/P50/P95: %s / %s / %s\n",
		money(fc.FinalQuantiles.P5, 2), money(fc.FinalQuantiles.P50, 2), money(fc.FinalQuantiles.P95, 2))
	return nil
}

// ReportHistory lista las ejecuciones persistidas.
func (c *Console) ReportHistory(_ context.Context, runs []domain.RunSummary) error {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "No runs recorded")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "Kind", "Symbol", "S0", "Call / Forecast", "Put / Return", "ID")
	for _, r := range runs {
		secondary := money(r.Secondary, 4)
		if r.Kind == "forecast" {
			secondary = signedPct(r.Secondary)
		}
		if err := table.Append(
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Kind,
			r.Symbol,
			money(r.Spot, 2),
			money(r.Headline, 4),
			secondary,
			shortID(r.ID),
		); err != nil {
			return fmt.Errorf("notify.ReportHistory: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("notify.ReportHistory: %w", err)
	}
	return nil
}

// checkpoints devuelve los días a mostrar dentro de [0, steps], siempre con el último.
func checkpoints(steps int) []int {
	out := make([]int, 0, len(forecastCheckpoints)+1)
	for _, d := range forecastCheckpoints {
		if d < steps {
			out = append(out, d)
		}
	}
	return append(out, steps)
}

// money redondea con decimal para evitar artefactos tipo 10.450000000000001.
func money(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func pct(v float64) string {
	return decimal.NewFromFloat(v * 100).StringFixed(2) + "%"
}

func signedPct(v float64) string {
	s := pct(v)
	if v >= 0 {
		return "+" + s
	}
	return s
}

func relLabel(v float64) string {
	if math.IsInf(v, 0) {
		return "INF"
	}
	return pct(v)
}

func clock(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("15:04:05")
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
