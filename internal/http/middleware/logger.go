package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Gedamu-tinsae/remove-password/internal/logging"
)

// Logger is a middleware that logs each HTTP request as one JSON line.
// Fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
//
// Request bodies and form values are never logged; they may carry passwords.
func Logger(l *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		l.Info("http_request", logging.Fields{
			"request_id": RequestIDFromCtx(c),
			"method":     c.Method(),
			// Use only the path segment, query strings are dropped.
			"path":    c.Path(),
			"status":  statusOf(c, err),
			"latency": float64(time.Since(start).Microseconds()) / 1000,
		})

		return err
	}
}

// statusOf reports the status the client will see. When a handler returned an error,
// the global ErrorHandler has not run yet, so the status is taken from the error.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
