package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/darkiku/RfsGov/internal/obs"
)

// Recover turns a handler panic into a 500 and reports it to Sentry before
// the response is written.
func Recover() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, v any) {
			obs.CapturePanic(v, c.Path())
		},
	})
}
