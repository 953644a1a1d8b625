package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan sources
const (
	PlanSourceManual  = "manual"
	PlanSourceAISplit = "ai_split"
	PlanSourceReplan  = "ai_replan"
)

// Plan creators
const (
	CreatedByUser   = "user"
	CreatedBySystem = "system"
)

// Plan is one versioned task breakdown of a goal. Superseded plans are kept
// for history and never mutated; Goal.CurrentPlanID points at the live one.
type Plan struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	GoalID    uuid.UUID  `json:"goalId" gorm:"type:uuid;index;not null"`
	Version   int        `json:"version" gorm:"not null"`
	Source    string     `json:"source" gorm:"not null;default:'manual'"` // manual, ai_split, ai_replan
	CreatedBy string     `json:"createdBy" gorm:"not null;default:'user'"`
	Reason    *string    `json:"reason"`
	AIRunID   *uuid.UUID `json:"aiRunId" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"createdAt"`
	Tasks     []Task     `json:"tasks,omitempty" gorm:"foreignKey:PlanID"`
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Plan DTOs
type RevisePlanRequest struct {
	Reason *string     `json:"reason"`
	Tasks  []TaskInput `json:"tasks" validate:"required"`
}
