package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeletionRequest statuses.
const (
	DeletionStatusPending   = "pending"
	DeletionStatusCompleted = "completed"
)

// DeletionRequest tracks the unanimous-confirmation protocol for removing a
// proposal that has active investments. The confirmed count is always derived
// from DeletionConfirmation rows, never stored as a raw counter.
type DeletionRequest struct {
	DeletionRequestID uuid.UUID      `gorm:"column:deletion_request_id;type:uuid;primaryKey" json:"deletion_request_id"`
	ProposalID        uuid.UUID      `gorm:"column:proposal_id;type:uuid;not null;index" json:"proposal_id"`
	TotalInvestors    int64          `gorm:"column:total_investors;not null" json:"total_investors"`
	Status            string         `gorm:"column:status;type:varchar(20);default:'pending'" json:"status"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (DeletionRequest) TableName() string {
	return "deletion_requests"
}

func (d *DeletionRequest) BeforeCreate(tx *gorm.DB) error {
	if d.DeletionRequestID == uuid.Nil {
		d.DeletionRequestID = uuid.New()
	}
	return nil
}

// DeletionConfirmation is one investor's sign-off slot on a deletion request.
// One row per (deletion_request, investor); confirming twice is a no-op.
type DeletionConfirmation struct {
	ConfirmationID    uuid.UUID  `gorm:"column:confirmation_id;type:uuid;primaryKey" json:"confirmation_id"`
	DeletionRequestID uuid.UUID  `gorm:"column:deletion_request_id;type:uuid;not null;uniqueIndex:idx_deletion_investor" json:"deletion_request_id"`
	InvestorID        uuid.UUID  `gorm:"column:investor_id;type:uuid;not null;uniqueIndex:idx_deletion_investor" json:"investor_id"`
	Confirmed         bool       `gorm:"column:confirmed;not null;default:false" json:"confirmed"`
	ConfirmedAt       *time.Time `gorm:"column:confirmed_at" json:"confirmed_at"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (DeletionConfirmation) TableName() string {
	return "deletion_confirmations"
}

func (d *DeletionConfirmation) BeforeCreate(tx *gorm.DB) error {
	if d.ConfirmationID == uuid.Nil {
		d.ConfirmationID = uuid.New()
	}
	return nil
}
