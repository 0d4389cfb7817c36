package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Gedamu-tinsae/remove-password/internal/logging"
)

// Recover turns handler panics into errors for the global ErrorHandler and logs the stack.
func Recover(l *logging.Logger) fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			l.Error("panic_recovered", logging.Fields{
				"request_id": RequestIDFromCtx(c),
				"path":       c.Path(),
				"panic":      fmt.Sprint(e),
				"stack":      string(debug.Stack()),
			})
		},
	})
}
