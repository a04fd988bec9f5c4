package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/meribel-snow-monitor/internal/avalanche"
	"github.com/i474232898/meribel-snow-monitor/internal/catalog"
	"github.com/i474232898/meribel-snow-monitor/internal/weather"
)

var validate = validator.New()

// Dashboard is the view state the API reads and mutates.
type Dashboard interface {
	Snapshot() weather.Snapshot
	Locations() []weather.Location
	SelectLocation(id string) (*weather.Cycle, error)
	SelectWindow(w weather.Window) (*weather.Cycle, error)
	Refresh() (*weather.Cycle, error)
}

// Deps groups what the handlers need.
type Deps struct {
	Dashboard Dashboard
	Avalanche avalanche.Forecaster
	Resources catalog.Resources
	Logger    *zap.Logger

	// WaitTimeout bounds ?wait=true requests. Zero means defaultWaitTimeout.
	WaitTimeout time.Duration
}

const defaultWaitTimeout = 30 * time.Second

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	logger := deps.Logger.With(zap.String("component", "http-api"))
	v1 := app.Group("/api/v1")

	v1.Get("/locations", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"locations": deps.Dashboard.Locations(),
			"selected":  deps.Dashboard.Snapshot().Location.ID,
		})
	})

	v1.Get("/resources", func(c *fiber.Ctx) error {
		return c.JSON(deps.Resources)
	})

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.JSON(buildDashboard(c, deps, logger))
	})

	v1.Put("/dashboard/location", func(c *fiber.Ctx) error {
		var req selectLocationRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		cycle, err := deps.Dashboard.SelectLocation(req.ID)
		if err != nil {
			return cycleStartError(err)
		}
		return respondCycle(c, deps, logger, cycle)
	})

	v1.Put("/dashboard/window", func(c *fiber.Ctx) error {
		var req selectWindowRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		cycle, err := deps.Dashboard.SelectWindow(weather.Window(req.Days))
		if err != nil {
			return cycleStartError(err)
		}
		return respondCycle(c, deps, logger, cycle)
	})

	v1.Post("/dashboard/refresh", func(c *fiber.Ctx) error {
		cycle, err := deps.Dashboard.Refresh()
		if err != nil {
			return cycleStartError(err)
		}
		return respondCycle(c, deps, logger, cycle)
	})
}

type selectLocationRequest struct {
	ID string `json:"id" validate:"required"`
}

type selectWindowRequest struct {
	Days int `json:"days" validate:"required,oneof=7 14"`
}

// dashboardResponse is the snapshot plus values derived from it on read.
type dashboardResponse struct {
	weather.Snapshot
	Summary   *weather.SummaryStats `json:"summary"`
	Avalanche *avalanche.Bulletin   `json:"avalanche"`
}

func buildDashboard(c *fiber.Ctx, deps Deps, logger *zap.Logger) dashboardResponse {
	snap := deps.Dashboard.Snapshot()
	resp := dashboardResponse{Snapshot: snap}

	if snap.Data != nil {
		stats := weather.Summarize(snap.Data.Records)
		resp.Summary = &stats
	}

	if deps.Avalanche != nil {
		bulletin, err := deps.Avalanche.Bulletin(c.UserContext(), snap.Location)
		if err != nil {
			logger.Warn("avalanche bulletin unavailable",
				zap.String("location", snap.Location.ID),
				zap.Error(err))
		} else {
			resp.Avalanche = bulletin
		}
	}
	return resp
}

func bindAndValidate(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func cycleStartError(err error) error {
	switch {
	case errors.Is(err, weather.ErrUnknownLocation):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, weather.ErrInvalidWindow):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrClosed):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to start fetch cycle")
	}
}

// respondCycle answers 202 with the cycle id, or, with ?wait=true, blocks
// until the cycle completes and returns the resulting dashboard. A cycle still
// running after WaitTimeout is answered with 202 and "pending": true.
func respondCycle(c *fiber.Ctx, deps Deps, logger *zap.Logger, cycle *weather.Cycle) error {
	wait, _ := strconv.ParseBool(c.Query("wait"))
	if !wait {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"cycle": cycle.ID})
	}

	timeout := deps.WaitTimeout
	if timeout <= 0 {
		timeout = defaultWaitTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-cycle.Done():
	case <-timer.C:
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"cycle": cycle.ID, "pending": true})
	}

	if err := cycle.Wait(); err != nil {
		if errors.Is(err, weather.ErrSuperseded) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   true,
			"kind":    weather.ErrorKind(err),
			"message": err.Error(),
			"cycle":   cycle.ID,
		})
	}
	return c.JSON(buildDashboard(c, deps, logger))
}
