package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification types emitted by the core workflows.
const (
	NotifyRequestCreated       = "request_created"
	NotifyRequestApproved      = "request_approved"
	NotifyRequestRejected      = "request_rejected"
	NotifyInvestmentRequest    = "investment_request"
	NotifyInvestmentCancelled  = "investment_cancelled"
	NotifyDeletionConfirmation = "deletion_confirmation"
)

// Notification is a fan-out record for a user (or role broadcast when UserID
// is nil). Payload carries the workflow-specific details.
type Notification struct {
	NotificationID uuid.UUID      `gorm:"column:notification_id;type:uuid;primaryKey" json:"notification_id"`
	UserID         *uuid.UUID     `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Role           string         `gorm:"column:role;not null" json:"role"`
	Type           string         `gorm:"column:type;not null" json:"type"`
	Payload        datatypes.JSON `gorm:"column:payload;type:json" json:"payload"`
	ReadAt         *time.Time     `gorm:"column:read_at" json:"read_at"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.NotificationID == uuid.Nil {
		n.NotificationID = uuid.New()
	}
	return nil
}
