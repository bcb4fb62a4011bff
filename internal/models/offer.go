package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Offer statuses.
const (
	OfferStatusDraft     = "draft"
	OfferStatusPublished = "published"
	OfferStatusClosed    = "closed"
)

// Offer is a farmer's structured, share-priced investment listing.
// total_shares = floor(total_amount / share_price); available_shares is
// mutated only by the allocation ledger and stays in [0, total_shares].
type Offer struct {
	OfferID               uuid.UUID      `gorm:"column:offer_id;type:uuid;primaryKey" json:"offer_id"`
	FarmerID              uuid.UUID      `gorm:"column:farmer_id;type:uuid;not null;index" json:"farmer_id"`
	FarmName              string         `gorm:"column:farm_name" json:"farm_name"`
	Title                 string         `gorm:"column:title;not null" json:"title"`
	Description           string         `gorm:"column:description" json:"description"`
	Asset                 string         `gorm:"column:asset" json:"asset"`
	TotalAmount           int64          `gorm:"column:total_amount;not null" json:"total_amount"`
	SharePrice            int64          `gorm:"column:share_price;not null" json:"share_price"`
	TotalShares           int64          `gorm:"column:total_shares;not null" json:"total_shares"`
	AvailableShares       int64          `gorm:"column:available_shares;not null" json:"available_shares"`
	MinShares             int64          `gorm:"column:min_shares;not null;default:1" json:"min_shares"`
	ExpectedMonthlyIncome *int64         `gorm:"column:expected_monthly_income" json:"expected_monthly_income"`
	Region                string         `gorm:"column:region" json:"region"`
	City                  string         `gorm:"column:city" json:"city"`
	Socials               string         `gorm:"column:socials" json:"socials"`
	Status                string         `gorm:"column:status;type:varchar(20);default:'draft'" json:"status"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Offer) TableName() string {
	return "investment_offers"
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.OfferID == uuid.Nil {
		o.OfferID = uuid.New()
	}
	return nil
}
