package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gedamu-tinsae/remove-password/internal/service"
)

// RouteOptions carries the optional pieces RegisterRoutes wires in.
type RouteOptions struct {
	Unlock UnlockOptions
	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; the unlock flow lives in the service package.
func RegisterRoutes(app *fiber.App, unlockSvc service.UnlockService, opts RouteOptions) {
	app.Get("/health", HealthCheck(serviceProbe(unlockSvc)))
	app.Get("/healthz", LivenessProbe())

	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	api.Post("/unlock", UnlockDocument(unlockSvc, opts.Unlock))
}

// serviceProbe fails readiness until an unlock service is wired in.
func serviceProbe(svc service.UnlockService) Probe {
	return func(context.Context) error {
		if svc == nil {
			return errors.New("unlock service not configured")
		}
		return nil
	}
}
