package users

import (
	"agroshare-backend/internal/middleware"
	"agroshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

type upsertProfileBody struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	FarmName  string `json:"farm_name"`
	Bio       string `json:"bio"`
	PhotoURL  string `json:"photo_url"`
}

// POST /api/v1/users/save-profile — caller upserts their own profile
func (h *Handlers) SaveProfile(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	var body upsertProfileBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.UpsertProfile(c.Context(), UpsertProfileInput{
		UserID:    id.UserID,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Phone:     body.Phone,
		Role:      body.Role,
		FarmName:  body.FarmName,
		Bio:       body.Bio,
		PhotoURL:  body.PhotoURL,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profile saved successfully", user, nil)
}

// GET /api/v1/users/get-profile/:user_id — public profile view
func (h *Handlers) GetProfile(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return response.Error(c, "Invalid user_id format", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.GetProfile(c.Context(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profile fetched successfully", user, nil)
}

// GET /api/v1/users/get-notifications — caller's notification feed
func (h *Handlers) GetNotifications(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	notifications, err := h.Service.ListNotifications(c.Context(), id.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Notifications fetched successfully", notifications, nil)
}

// POST /api/v1/users/read-notification/:notification_id
func (h *Handlers) ReadNotification(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	notificationID, err := uuid.Parse(c.Params("notification_id"))
	if err != nil {
		return response.Error(c, "Invalid notification_id format", fiber.StatusBadRequest, nil)
	}
	notification, err := h.Service.MarkNotificationRead(c.Context(), id.UserID, notificationID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Notification marked as read", notification, nil)
}
