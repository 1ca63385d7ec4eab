// Package httpapi expone el motor de pricing por HTTP con fiber.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/alejandrodnm/gbmpricer/internal/domain"
	"github.com/alejandrodnm/gbmpricer/internal/ports"
	"github.com/alejandrodnm/gbmpricer/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const requestTimeout = 60 * time.Second

// Engine es lo que la API necesita del servicio.
type Engine interface {
	Price(ctx context.Context, req service.PriceRequest) (domain.PricingRun, error)
	Forecast(ctx context.Context, req service.ForecastRequest) (domain.ForecastRun, error)
	History(ctx context.Context, since time.Duration) ([]domain.RunSummary, error)
}

// ErrorResponse es el cuerpo de cualquier respuesta de error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// NewApp crea la app fiber con middleware y rutas. storage puede ser nil; en
// ese caso la ruta de trayectorias responde 404.
func NewApp(engine Engine, storage ports.Storage, accessLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "gbmpricer",
		StrictRouting:         true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          requestTimeout,
		BodyLimit:             64 * 1024,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if accessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		}))
	}

	h := &handler{engine: engine, storage: storage}
	app.Get("/health", h.health)

	v1 := app.Group("/v1")
	v1.Post("/price", h.price)
	v1.Post("/forecast", h.forecast)
	v1.Get("/history", h.history)
	v1.Get("/forecasts/:id/trajectory", h.trajectory)

	return app
}

// statusFor traduce los errores del dominio a códigos HTTP.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrInvalidParameter),
		errors.Is(err, domain.ErrEmptyEnsemble),
		errors.Is(err, domain.ErrLengthMismatch):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDataUnavailable):
		return fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	return c.Status(code).JSON(ErrorResponse{
		Error:   fiberStatusText(code),
		Message: err.Error(),
		Code:    code,
	})
}

func fiberStatusText(code int) string {
	if msg := fiber.NewError(code).Message; msg != "" {
		return msg
	}
	return "error"
}
