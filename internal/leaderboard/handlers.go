package leaderboard

import (
	"strconv"

	"agroshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// GET /api/v1/leaderboard?region=&limit=&current_user_id=
func (h *Handlers) GetLeaderboard(c *fiber.Ctx) error {
	q := Query{Region: c.Query("region")}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return response.Error(c, "Invalid limit", fiber.StatusBadRequest, nil)
		}
		q.Limit = limit
	}
	if raw := c.Query("current_user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return response.Error(c, "Invalid current_user_id format", fiber.StatusBadRequest, nil)
		}
		q.CurrentUserID = userID
	}
	result, err := h.Service.Leaderboard(c.Context(), q)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Leaderboard fetched successfully", result, nil)
}
