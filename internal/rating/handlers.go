package rating

import (
	"agroshare-backend/internal/middleware"
	"agroshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

type calculateBody struct {
	Diagnostics Diagnostics `json:"diagnostics"`
	Profile     Profile     `json:"profile"`
}

// POST /api/v1/rating/calculate — stateless scoring of a submitted payload
func (h *Handlers) Calculate(c *fiber.Ctx) error {
	var body calculateBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	return response.Success(c, "Rating calculated successfully",
		h.Service.Calculate(body.Diagnostics, body.Profile), nil)
}

// GET /api/v1/rating/get-rating?farmer_id= — own rating by default
func (h *Handlers) GetRating(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	farmerID := id.UserID
	if q := c.Query("farmer_id"); q != "" {
		parsed, err := uuid.Parse(q)
		if err != nil {
			return response.Error(c, "Invalid farmer_id format", fiber.StatusBadRequest, nil)
		}
		farmerID = parsed
	}
	rating, err := h.Service.GetRating(c.Context(), farmerID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Rating fetched successfully", rating, nil)
}
