package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// CORS allows any origin (the platform serves a public API consumed by the
// web client directly) and answers preflight requests.
func CORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Access-Control-Allow-Origin", "*")
		c.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Set("Access-Control-Allow-Headers", "Content-Type, X-User-Id, X-User-Role")
		c.Set("Access-Control-Max-Age", "86400")
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}
