package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressSnapshot is an immutable daily record of a goal's progress.
// At most one row exists per (goal, date); recomputing the same day
// overwrites the rates instead of inserting a duplicate.
type ProgressSnapshot struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	GoalID       uuid.UUID `json:"goalId" gorm:"type:uuid;not null;uniqueIndex:idx_snapshots_goal_date"`
	SnapshotDate time.Time `json:"snapshotDate" gorm:"type:date;not null;uniqueIndex:idx_snapshots_goal_date"`
	TotalTasks   int       `json:"totalTasks" gorm:"not null"`
	DoneTasks    int       `json:"doneTasks" gorm:"not null"`
	ActualRate   float64   `json:"actualRate" gorm:"not null"`
	IdealRate    float64   `json:"idealRate" gorm:"not null"`
	GapRate      float64   `json:"gapRate" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s *ProgressSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
