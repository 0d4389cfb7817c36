package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/Gedamu-tinsae/remove-password/internal/config"
)

// allMethods is every method a browser may preflight for.
var allMethods = strings.Join([]string{
	fiber.MethodGet,
	fiber.MethodPost,
	fiber.MethodHead,
	fiber.MethodPut,
	fiber.MethodDelete,
	fiber.MethodPatch,
	fiber.MethodOptions,
}, ",")

// CORS restricts browser callers to the configured origin allow-list.
// Once the origin is accepted every method is allowed and requested headers are echoed back.
func CORS(cfg config.CORSConfig) fiber.Handler {
	origins := strings.Join(cfg.AllowedOrigins, ",")
	if origins == "" {
		// An empty allow-list admits no browser origin.
		return cors.New(cors.Config{
			AllowOriginsFunc: func(string) bool { return false },
			AllowMethods:     allMethods,
		})
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     allMethods,
		AllowCredentials: cfg.AllowCredentials && origins != "*",
		ExposeHeaders:    "Content-Disposition,X-Request-ID,X-Page-Count,X-Was-Encrypted",
		MaxAge:           cfg.MaxAgeSec,
	})
}
