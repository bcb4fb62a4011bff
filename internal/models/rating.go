package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FarmerRating is the persisted scoring projection for one farmer. It is
// system-owned derived state: recomputed whenever the underlying diagnosis
// changes, never mutated by users.
type FarmerRating struct {
	RatingID       uuid.UUID      `gorm:"column:rating_id;type:uuid;primaryKey" json:"rating_id"`
	FarmerID       uuid.UUID      `gorm:"column:farmer_id;type:uuid;not null;uniqueIndex" json:"farmer_id"`
	Region         string         `gorm:"column:region" json:"region"`
	RegionScore    float64        `gorm:"column:region_score;not null;default:0" json:"region_score"`
	LandScore      float64        `gorm:"column:land_score;not null;default:0" json:"land_score"`
	AnimalScore    float64        `gorm:"column:animal_score;not null;default:0" json:"animal_score"`
	EquipmentScore float64        `gorm:"column:equipment_score;not null;default:0" json:"equipment_score"`
	CropScore      float64        `gorm:"column:crop_score;not null;default:0" json:"crop_score"`
	StaffScore     float64        `gorm:"column:staff_score;not null;default:0" json:"staff_score"`
	FinanceScore   float64        `gorm:"column:finance_score;not null;default:0" json:"finance_score"`
	TotalRating    int            `gorm:"column:total_rating;not null;default:0;index" json:"total_rating"`
	Band           string         `gorm:"column:band" json:"band"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FarmerRating) TableName() string {
	return "farmer_ratings"
}

func (r *FarmerRating) BeforeCreate(tx *gorm.DB) error {
	if r.RatingID == uuid.Nil {
		r.RatingID = uuid.New()
	}
	return nil
}
