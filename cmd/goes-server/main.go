package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	httpapi "github.com/i474232898/goes-imagery/internal/api/http"
	"github.com/i474232898/goes-imagery/internal/config"
	"github.com/i474232898/goes-imagery/internal/imagery/providers"
	"github.com/i474232898/goes-imagery/internal/logging"
	"github.com/i474232898/goes-imagery/internal/metrics"
	"github.com/i474232898/goes-imagery/internal/pipeline"
	"github.com/i474232898/goes-imagery/internal/render"
	"github.com/i474232898/goes-imagery/internal/scheduler"
	"github.com/i474232898/goes-imagery/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	// Shared HTTP client for outbound snapshot calls; the per-request
	// timeout is applied by the fetcher.
	httpClient := &http.Client{}
	fetcher := providers.NewWVSFetcher(httpClient, cfg.WVSBaseURL, cfg.HTTPTimeout)

	// Run history with configured retention.
	runs := store.NewMemoryStore(cfg.RunHistory, cfg.RunMaxAge)

	pcfg := pipeline.DefaultConfig()
	pcfg.Render = render.Options{DPI: cfg.FigureDPI}
	service, err := pipeline.NewService(fetcher, runs, pcfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build pipeline")
	}

	// Scheduler that periodically refreshes the output image.
	sched := scheduler.New(cfg.ScheduleProduct, cfg.OutputFile, cfg.FetchInterval, cfg.HTTPTimeout+30*time.Second, service)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "goes-imagery",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Rendering waits on the upstream snapshot.
		WriteTimeout: cfg.HTTPTimeout + 30*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "goes-imagery",
		})
	})
	app.Get("/metrics", metrics.Handler())

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("server listening")

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
