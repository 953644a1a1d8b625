package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Period types
const (
	PeriodMonth  = "month"
	PeriodYear   = "year"
	PeriodCustom = "custom"
)

// DateFormat is the calendar-date layout used on the wire (start/end/due dates).
const DateFormat = "2006-01-02"

type Goal struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID      `json:"userId" gorm:"type:uuid;index;not null"`
	Title         string         `json:"title" gorm:"not null"`
	Description   *string        `json:"description"`
	Category      *string        `json:"category"`
	Priority      int            `json:"priority" gorm:"default:1"`
	PeriodType    string         `json:"periodType" gorm:"not null;default:'month'"` // month, year, custom
	StartDate     time.Time      `json:"startDate" gorm:"type:date;not null"`
	EndDate       time.Time      `json:"endDate" gorm:"type:date;not null"`
	Status        string         `json:"status" gorm:"not null;default:'active'"`
	CurrentPlanID *uuid.UUID     `json:"currentPlanId" gorm:"type:uuid"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	Plans         []Plan         `json:"plans,omitempty" gorm:"foreignKey:GoalID"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Goal DTOs
type CreateGoalRequest struct {
	Title       string                   `json:"title" validate:"required"`
	Description *string                  `json:"description"`
	Category    *string                  `json:"category"`
	Priority    *int                     `json:"priority"`
	PeriodType  *string                  `json:"periodType"`
	StartDate   string                   `json:"startDate" validate:"required"`
	EndDate     string                   `json:"endDate" validate:"required"`
	Tasks       []TaskInput              `json:"tasks"`
	Commitment  *CreateCommitmentRequest `json:"commitment"`
}

type UpdateGoalRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *int    `json:"priority"`
	Status      *string `json:"status"`
}
