package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Penalty charge statuses. Pending charges are finalized by the payment
// provider integration, not by this service.
const (
	PenaltyPending = "pending"
)

// PenaltyCharge is created exactly once when a commitment fails evaluation.
// Immutable after creation except for Status.
type PenaltyCharge struct {
	ID                      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CommitmentID            uuid.UUID `json:"commitmentId" gorm:"type:uuid;index;not null"`
	UserID                  uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"`
	Amount                  float64   `json:"amount" gorm:"not null"`
	Currency                string    `json:"currency" gorm:"not null"`
	ActualCompletionPercent float64   `json:"actualCompletionPercent" gorm:"not null"`
	Status                  string    `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

func (p *PenaltyCharge) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
