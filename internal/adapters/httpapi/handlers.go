package httpapi

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
	"github.com/alejandrodnm/gbmpricer/internal/ports"
	"github.com/alejandrodnm/gbmpricer/internal/service"
	"github.com/gofiber/fiber/v2"
)

type handler struct {
	engine  Engine
	storage ports.Storage
}

// PricingResponse es la respuesta de POST /v1/price.
type PricingResponse struct {
	ID           string    `json:"id,omitempty"`
	Symbol       string    `json:"symbol"`
	AsOf         time.Time `json:"as_of"`
	Spot         float64   `json:"spot"`
	Strike       float64   `json:"strike"`
	Expiry       float64   `json:"expiry"`
	RiskFreeRate float64   `json:"risk_free_rate"`
	Volatility   float64   `json:"volatility"`
	D1           float64   `json:"d1"`
	D2           float64   `json:"d2"`
	Call         float64   `json:"call"`
	Put          float64   `json:"put"`
	MonteCarlo   struct {
		Call       float64 `json:"call"`
		Put        float64 `json:"put"`
		CallStdErr float64 `json:"call_std_err"`
		PutStdErr  float64 `json:"put_std_err"`
		CallRelErr float64 `json:"call_rel_err"`
		PutRelErr  float64 `json:"put_rel_err"`
		Iterations int     `json:"iterations"`
		Seed       uint64  `json:"seed"`
	} `json:"monte_carlo"`
}

// ForecastResponse es la respuesta de POST /v1/forecast.
type ForecastResponse struct {
	ID             string    `json:"id,omitempty"`
	Symbol         string    `json:"symbol"`
	AsOf           time.Time `json:"as_of"`
	Spot           float64   `json:"spot"`
	Drift          float64   `json:"drift"`
	StepVolatility float64   `json:"step_volatility"`
	Paths          int       `json:"paths"`
	Steps          int       `json:"steps"`
	Final          float64   `json:"final"`
	ExpectedReturn float64   `json:"expected_return"`
	P5             float64   `json:"p5"`
	P50            float64   `json:"p50"`
	P95            float64   `json:"p95"`
	MeanTrajectory []float64 `json:"mean_trajectory"`
	Seed           uint64    `json:"seed"`
}

func (h *handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC()})
}

// price handles POST /v1/price
func (h *handler) price(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	var req service.PriceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	run, err := h.engine.Price(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(toPricingResponse(run))
}

// forecast handles POST /v1/forecast
func (h *handler) forecast(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	var req service.ForecastRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	run, err := h.engine.Forecast(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(toForecastResponse(run))
}

// history handles GET /v1/history?hours=24
func (h *handler) history(c *fiber.Ctx) error {
	hours := c.QueryInt("hours", 24)
	if hours <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("hours must be positive, got %d", hours))
	}
	runs, err := h.engine.History(c.UserContext(), time.Duration(hours)*time.Hour)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []domain.RunSummary{}
	}
	return c.JSON(runs)
}

// trajectory handles GET /v1/forecasts/:id/trajectory
func (h *handler) trajectory(c *fiber.Ctx) error {
	if h.storage == nil {
		return fmt.Errorf("storage disabled: %w", domain.ErrNotFound)
	}
	values, err := h.storage.LoadTrajectory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": c.Params("id"), "mean_trajectory": values})
}

func toPricingResponse(run domain.PricingRun) PricingResponse {
	var r PricingResponse
	r.ID = run.ID
	r.Symbol = run.Symbol
	r.AsOf = run.AsOf
	r.Spot = run.Params.Spot
	r.Strike = run.Params.Strike
	r.Expiry = run.Params.Expiry
	r.RiskFreeRate = run.Params.RiskFreeRate
	r.Volatility = run.Params.Volatility
	r.D1, r.D2 = run.D1, run.D2
	r.Call, r.Put = run.Analytic.Call, run.Analytic.Put

	mc := run.MonteCarlo
	r.MonteCarlo.Call, r.MonteCarlo.Put = mc.Call, mc.Put
	r.MonteCarlo.CallStdErr, r.MonteCarlo.PutStdErr = mc.CallStdErr, mc.PutStdErr
	r.MonteCarlo.CallRelErr = finiteOrZero(run.CallRelError())
	r.MonteCarlo.PutRelErr = finiteOrZero(run.PutRelError())
	r.MonteCarlo.Iterations = mc.Iterations
	r.MonteCarlo.Seed = mc.Seed
	return r
}

func toForecastResponse(run domain.ForecastRun) ForecastResponse {
	fc := run.Forecast
	return ForecastResponse{
		ID:             run.ID,
		Symbol:         run.Symbol,
		AsOf:           run.AsOf,
		Spot:           run.Spot,
		Drift:          run.Drift,
		StepVolatility: run.StepVolatility,
		Paths:          fc.Paths,
		Steps:          fc.Steps,
		Final:          fc.Final,
		ExpectedReturn: run.ExpectedReturn(),
		P5:             fc.FinalQuantiles.P5,
		P50:            fc.FinalQuantiles.P50,
		P95:            fc.FinalQuantiles.P95,
		MeanTrajectory: fc.MeanTrajectory,
		Seed:           run.Seed,
	}
}

// finiteOrZero evita +Inf, que encoding/json no sabe serializar.
func finiteOrZero(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
