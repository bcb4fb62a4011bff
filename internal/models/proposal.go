package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Proposal statuses.
const (
	ProposalStatusActive          = "active"
	ProposalStatusPendingDeletion = "pending_deletion"
)

// Proposal product types.
const (
	ProductTypeIncome    = "income"
	ProductTypeProducts  = "products"
	ProductTypePatronage = "patronage"
)

// Proposal is the simpler share-based listing variant (income, products or
// patronage). Asset holds the typed asset payload (animal, crop, beehive or
// equipment) validated at the boundary.
type Proposal struct {
	ProposalID      uuid.UUID      `gorm:"column:proposal_id;type:uuid;primaryKey" json:"proposal_id"`
	FarmerID        uuid.UUID      `gorm:"column:farmer_id;type:uuid;not null;index" json:"farmer_id"`
	ProductType     string         `gorm:"column:product_type;type:varchar(20);default:'income'" json:"product_type"`
	AssetType       string         `gorm:"column:asset_type;not null" json:"asset_type"`
	Asset           datatypes.JSON `gorm:"column:asset;type:json" json:"asset"`
	Description     string         `gorm:"column:description;not null" json:"description"`
	PhotoURL        string         `gorm:"column:photo_url" json:"photo_url"`
	Price           int64          `gorm:"column:price;not null" json:"price"`
	Shares          int64          `gorm:"column:shares;not null;default:1" json:"shares"`
	ExpectedProduct string         `gorm:"column:expected_product" json:"expected_product"`
	UpdateFrequency string         `gorm:"column:update_frequency;default:weekly" json:"update_frequency"`
	Status          string         `gorm:"column:status;type:varchar(20);default:'active'" json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Proposal) TableName() string {
	return "proposals"
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) error {
	if p.ProposalID == uuid.Nil {
		p.ProposalID = uuid.New()
	}
	return nil
}
