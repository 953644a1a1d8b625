package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task event types
const (
	TaskEventCreated   = "created"
	TaskEventUpdated   = "updated"
	TaskEventCompleted = "completed"
	TaskEventReopened  = "reopened"
	TaskEventDropped   = "dropped"
)

// TaskEvent is an append-only audit row for task changes, surfaced as the
// per-goal activity feed.
type TaskEvent struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TaskID    uuid.UUID `json:"taskId" gorm:"type:uuid;index;not null"`
	GoalID    uuid.UUID `json:"goalId" gorm:"type:uuid;index;not null"`
	Type      string    `json:"type" gorm:"not null"` // created, updated, completed, reopened, dropped
	Meta      *string   `json:"meta"`                 // JSON string with event context
	CreatedAt time.Time `json:"createdAt"`
}

func (e *TaskEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
