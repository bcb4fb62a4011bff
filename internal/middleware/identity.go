package middleware

import (
	"agroshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const identityLocal = "identity"

// Identity is the caller identity taken from trusted gateway headers.
// Authentication itself happens upstream; the core only consumes the result.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// Identify parses X-User-Id / X-User-Role into Locals. Requests without the
// header pass through anonymous; RequireAuth gates the protected groups.
func Identify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-User-Id")
		if raw == "" {
			return c.Next()
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.Error(c, "Invalid X-User-Id header", fiber.StatusBadRequest, nil)
		}
		c.Locals(identityLocal, &Identity{UserID: id, Role: c.Get("X-User-Role")})
		return c.Next()
	}
}

// RequireAuth ensures a caller identity is present. 401 otherwise.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetIdentity(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// RequireRole gates a route group to one role (e.g. farmer-only actions).
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := GetIdentity(c)
		if id == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if id.Role != role {
			return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}

// GetIdentity returns the caller identity (nil if anonymous).
func GetIdentity(c *fiber.Ctx) *Identity {
	if id, ok := c.Locals(identityLocal).(*Identity); ok {
		return id
	}
	return nil
}
