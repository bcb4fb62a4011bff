package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OfferRequest statuses. Approved and rejected are terminal.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// OfferRequest is an investor's intent against an offer. Shares are reserved
// at approval time, not at request time.
type OfferRequest struct {
	RequestID       uuid.UUID      `gorm:"column:request_id;type:uuid;primaryKey" json:"request_id"`
	OfferID         uuid.UUID      `gorm:"column:offer_id;type:uuid;not null;index" json:"offer_id"`
	InvestorID      uuid.UUID      `gorm:"column:investor_id;type:uuid;not null;index" json:"investor_id"`
	SharesRequested int64          `gorm:"column:shares_requested;not null" json:"shares_requested"`
	Amount          int64          `gorm:"column:amount;not null" json:"amount"`
	Message         string         `gorm:"column:message" json:"message"`
	Status          string         `gorm:"column:status;type:varchar(20);default:'pending'" json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OfferRequest) TableName() string {
	return "investment_requests"
}

func (r *OfferRequest) BeforeCreate(tx *gorm.DB) error {
	if r.RequestID == uuid.Nil {
		r.RequestID = uuid.New()
	}
	return nil
}
