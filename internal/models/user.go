package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a platform account. Role is "farmer", "investor" or "admin".
type User struct {
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	FirstName string         `gorm:"column:first_name" json:"first_name"`
	LastName  string         `gorm:"column:last_name" json:"last_name"`
	Email     string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Phone     string         `gorm:"column:phone" json:"phone"`
	Role      string         `gorm:"column:role;not null;default:investor" json:"role"`
	FarmName  string         `gorm:"column:farm_name" json:"farm_name"`
	Bio       string         `gorm:"column:bio" json:"bio"`
	PhotoURL  string         `gorm:"column:photo_url" json:"photo_url"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
