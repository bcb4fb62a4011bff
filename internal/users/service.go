package users

import (
	"context"
	"time"

	"agroshare-backend/internal/models"
	"agroshare-backend/internal/pkg/apperr"
	"agroshare-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages user profiles and the notification feed. Identity itself
// comes from the gateway; this only stores the profile record behind it.
type Service struct {
	DB *gorm.DB
}

type UpsertProfileInput struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      string
	FarmName  string
	Bio       string
	PhotoURL  string
}

// UpsertProfile creates or updates the caller's profile row.
func (s *Service) UpsertProfile(ctx context.Context, in UpsertProfileInput) (*models.User, error) {
	if in.Email == "" {
		return nil, apperr.InvalidInput("email is required")
	}
	role := in.Role
	if role == "" {
		role = constants.RoleInvestor
	}
	if !constants.IsValidRole(role) {
		return nil, apperr.InvalidInput("unknown role").WithDetail("role", role)
	}

	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", in.UserID).First(&user).Error
		if err == gorm.ErrRecordNotFound {
			user = models.User{
				UserID:    in.UserID,
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Email:     in.Email,
				Phone:     in.Phone,
				Role:      role,
				FarmName:  in.FarmName,
				Bio:       in.Bio,
				PhotoURL:  in.PhotoURL,
			}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"first_name": in.FirstName,
			"last_name":  in.LastName,
			"email":      in.Email,
			"phone":      in.Phone,
			"role":       role,
			"farm_name":  in.FarmName,
			"bio":        in.Bio,
			"photo_url":  in.PhotoURL,
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", in.UserID).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetProfile returns a user's profile.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}
	return &user, nil
}

// ListNotifications returns the caller's notifications, unread first.
func (s *Service) ListNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	var out []models.Notification
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("read_at IS NOT NULL, created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotificationRead stamps one of the caller's notifications. Idempotent.
func (s *Service) MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	if err := s.DB.WithContext(ctx).
		Where("notification_id = ?", notificationID).First(&notification).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Notification")
		}
		return nil, err
	}
	if notification.UserID == nil || *notification.UserID != userID {
		return nil, apperr.Forbidden("Not the notification owner")
	}
	if notification.ReadAt != nil {
		return &notification, nil
	}
	now := time.Now()
	if err := s.DB.WithContext(ctx).Model(&notification).Update("read_at", &now).Error; err != nil {
		return nil, err
	}
	notification.ReadAt = &now
	return &notification, nil
}
