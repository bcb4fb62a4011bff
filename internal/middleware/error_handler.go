package middleware

import (
	"agroshare-backend/internal/pkg/apperr"
	"agroshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the global error handler. Typed application errors keep
// their code and details; fiber errors keep their status; everything else is
// a 500 in the standard error format.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if _, ok := apperr.As(err); ok {
		return response.FromError(c, err)
	}
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	return response.Error(c, message, code, nil)
}
