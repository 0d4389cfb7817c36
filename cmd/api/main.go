package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Gedamu-tinsae/remove-password/docs"
	"github.com/Gedamu-tinsae/remove-password/internal/config"
	handlers "github.com/Gedamu-tinsae/remove-password/internal/http/handler"
	"github.com/Gedamu-tinsae/remove-password/internal/http/middleware"
	"github.com/Gedamu-tinsae/remove-password/internal/logging"
	"github.com/Gedamu-tinsae/remove-password/internal/metrics"
	tracing "github.com/Gedamu-tinsae/remove-password/internal/otel"
	"github.com/Gedamu-tinsae/remove-password/internal/pdf"
	"github.com/Gedamu-tinsae/remove-password/internal/service"
)

// @title PDF Password Removal API
// @version 1.0
// @description Removes password protection from uploaded PDF documents.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Location)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, logger)
	if err != nil {
		logger.Error("tracing_init_failed", logging.Fields{"error": err})
		os.Exit(1)
	}

	unlockSvc := service.NewUnlockService(pdf.NewPDFCPU())

	app := fiber.New(fiber.Config{
		AppName:      "remove-password",
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.Upload.MaxBytes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	// Register global middleware
	app.Use(middleware.Recover(logger))
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(logger))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		switch c.Path() {
		case "/metrics", "/health", "/healthz":
			return true
		}
		return false
	})))
	app.Use(middleware.CORS(cfg.CORS))

	opts := handlers.RouteOptions{
		Unlock: handlers.UnlockOptions{
			ProcessingTimeout: cfg.Upload.ProcessingTimeout,
			Logger:            logger,
		},
	}
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
		if err != nil {
			logger.Error("metrics_init_failed", logging.Fields{"error": err})
			os.Exit(1)
		}
		app.Use(httpMetrics.Handler())

		opts.Unlock.Metrics, err = metrics.NewUnlockMetrics(reg)
		if err != nil {
			logger.Error("metrics_init_failed", logging.Fields{"error": err})
			os.Exit(1)
		}
		opts.Gatherer = reg
	}

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, unlockSvc, opts)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_starting", logging.Fields{
			"addr":            addr,
			"allowed_origins": cfg.CORS.AllowedOrigins,
			"max_upload":      cfg.Upload.MaxBytes,
		})
		errCh <- app.Listen(addr)
	}()

	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server_failed", logging.Fields{"error": err})
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("server_stopping", nil)
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
			logger.Error("server_shutdown_failed", logging.Fields{"error": err})
			exitCode = 1
		}
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Error("tracing_shutdown_failed", logging.Fields{"error": err})
	}

	if exitCode != 0 {
		cancel()
		stop()
		os.Exit(exitCode)
	}
}
