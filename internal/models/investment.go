package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Investment statuses.
const (
	InvestmentStatusPending   = "pending"
	InvestmentStatusApproved  = "approved"
	InvestmentStatusCancelled = "cancelled"
)

// Investment is an investor's stake in a proposal.
type Investment struct {
	InvestmentID uuid.UUID      `gorm:"column:investment_id;type:uuid;primaryKey" json:"investment_id"`
	ProposalID   uuid.UUID      `gorm:"column:proposal_id;type:uuid;not null;index" json:"proposal_id"`
	InvestorID   uuid.UUID      `gorm:"column:investor_id;type:uuid;not null;index" json:"investor_id"`
	Amount       int64          `gorm:"column:amount;not null" json:"amount"`
	Shares       int64          `gorm:"column:shares;not null;default:1" json:"shares"`
	Status       string         `gorm:"column:status;type:varchar(20);default:'pending'" json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Investment) TableName() string {
	return "investments"
}

func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.InvestmentID == uuid.Nil {
		i.InvestmentID = uuid.New()
	}
	return nil
}
