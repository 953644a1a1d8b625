package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Commitment statuses. Active is the only non-terminal state.
const (
	CommitmentActive    = "active"
	CommitmentAchieved  = "achieved"
	CommitmentFailed    = "failed"
	CommitmentCancelled = "cancelled"
)

// GoalCommitment is a self-imposed financial stake on a goal: if the actual
// completion percentage at the goal's end date falls below ThresholdPercent,
// the commitment fails and a penalty charge is created. At most one active
// commitment exists per goal.
type GoalCommitment struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	GoalID           uuid.UUID  `json:"goalId" gorm:"type:uuid;index;not null"`
	UserID           uuid.UUID  `json:"userId" gorm:"type:uuid;index;not null"`
	Amount           float64    `json:"amount" gorm:"not null"`
	Currency         string     `json:"currency" gorm:"not null;default:'JPY'"`
	ThresholdPercent float64    `json:"thresholdPercent" gorm:"not null;default:100"`
	Status           string     `json:"status" gorm:"not null;default:'active'"` // active, achieved, failed, cancelled
	EvaluatedAt      *time.Time `json:"evaluatedAt"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (gc *GoalCommitment) BeforeCreate(tx *gorm.DB) error {
	if gc.ID == uuid.Nil {
		gc.ID = uuid.New()
	}
	return nil
}

// Commitment DTOs
type CreateCommitmentRequest struct {
	Amount           float64  `json:"amount" validate:"required,gt=0"`
	Currency         *string  `json:"currency"`
	ThresholdPercent *float64 `json:"thresholdPercent"`
}
