package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/i474232898/meribel-snow-monitor/internal/avalanche"
	httpapi "github.com/i474232898/meribel-snow-monitor/internal/api/http"
	"github.com/i474232898/meribel-snow-monitor/internal/catalog"
	"github.com/i474232898/meribel-snow-monitor/internal/config"
	"github.com/i474232898/meribel-snow-monitor/internal/scheduler"
	"github.com/i474232898/meribel-snow-monitor/internal/weather"
	"github.com/i474232898/meribel-snow-monitor/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck
	zap.ReplaceGlobals(zl)

	if cfg.DotenvErr != nil {
		zl.Info("no .env file loaded", zap.Error(cfg.DotenvErr))
	}

	tz, err := weather.LoadTimezone(cfg.Timezone)
	if err != nil {
		zl.Fatal("failed to load timezone", zap.Error(err))
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Open-Meteo with resilience (backoff + circuit breaker).
	provider := providers.NewOpenMeteoProvider(providers.OpenMeteoConfig{
		ForecastURL: cfg.ForecastURL,
		ArchiveURL:  cfg.ArchiveURL,
		HTTP: providers.HTTPClientConfig{
			Client: httpClient,
			Backoff: providers.BackoffConfig{
				MaxRetries:      cfg.RetryMax,
				InitialInterval: cfg.RetryInitialInterval,
				MaxInterval:     cfg.RetryMaxInterval,
			},
		},
		BreakerTimeout: cfg.BreakerTimeout,
	}, zl)

	aggregator := weather.NewAggregator(provider, tz, zl)

	ctrl, err := weather.NewController(aggregator, catalog.Locations(), cfg.DefaultLocation, cfg.DefaultWindow, cfg.CycleTimeout, zl)
	if err != nil {
		zl.Fatal("failed to create dashboard controller", zap.Error(err))
	}
	defer ctrl.Close()

	if _, err := ctrl.Refresh(); err != nil {
		zl.Fatal("failed to start initial fetch cycle", zap.Error(err))
	}

	sched := scheduler.New(ctrl, cfg.RefreshInterval, zl)
	if err := sched.Start(); err != nil {
		zl.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "meribel-snow-monitor",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.CycleTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,PUT,POST",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "meribel-snow-monitor",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Dashboard:   ctrl,
		Avalanche:   avalanche.NewPlaceholder(zl),
		Resources:   catalog.GetResources(),
		Logger:      zl,
		WaitTimeout: cfg.CycleTimeout,
	})

	go func() {
		zl.Info("http server listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
}
