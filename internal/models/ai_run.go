package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AI run types
const (
	AIRunSplit  = "split"
	AIRunReplan = "replan"
)

// AIRun records one invocation of the planning generator: its input, output
// and outcome. Kept for auditability of plan suggestions.
type AIRun struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID  `json:"userId" gorm:"type:uuid;index;not null"`
	GoalID        *uuid.UUID `json:"goalId" gorm:"type:uuid;index"`
	Type          string     `json:"type" gorm:"not null"` // split, replan
	PromptVersion string     `json:"promptVersion" gorm:"not null"`
	Model         string     `json:"model" gorm:"not null"`
	Input         *string    `json:"input"`  // JSON string
	Output        *string    `json:"output"` // JSON string
	Status        string     `json:"status" gorm:"not null;default:'running'"`
	ErrorMessage  *string    `json:"errorMessage"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (r *AIRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
