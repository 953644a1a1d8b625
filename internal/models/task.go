package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task statuses
const (
	TaskTodo    = "todo"
	TaskDoing   = "doing"
	TaskDone    = "done"
	TaskDropped = "dropped"
)

// Task is a unit of work inside a plan. DoneAt is set iff Status is done.
type Task struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	PlanID        uuid.UUID      `json:"planId" gorm:"type:uuid;index;not null"`
	Title         string         `json:"title" gorm:"not null"`
	Description   *string        `json:"description"`
	Priority      int            `json:"priority" gorm:"default:1"` // smaller = more urgent
	DueDate       *time.Time     `json:"dueDate" gorm:"type:date"`
	EstimatedDays *int           `json:"estimatedDays"`
	OrderIndex    int            `json:"orderIndex" gorm:"default:0"`
	Status        string         `json:"status" gorm:"not null;default:'todo'"` // todo, doing, done, dropped
	DoneAt        *time.Time     `json:"doneAt"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Task DTOs

// TaskInput is the shape accepted when creating tasks in bulk (goal creation,
// plan revisions, AI suggestions applied to a new plan).
type TaskInput struct {
	Title         string  `json:"title" validate:"required"`
	Description   *string `json:"description"`
	Priority      *int    `json:"priority"`
	DueDate       *string `json:"dueDate"`
	EstimatedDays *int    `json:"estimatedDays"`
	OrderIndex    *int    `json:"orderIndex"`
}

type CreateTaskRequest struct {
	Title         string  `json:"title" validate:"required"`
	Description   *string `json:"description"`
	Priority      *int    `json:"priority"`
	DueDate       *string `json:"dueDate"`
	EstimatedDays *int    `json:"estimatedDays"`
	OrderIndex    *int    `json:"orderIndex"`
}

type UpdateTaskRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Priority      *int    `json:"priority"`
	DueDate       *string `json:"dueDate"`
	EstimatedDays *int    `json:"estimatedDays"`
	OrderIndex    *int    `json:"orderIndex"`
	Status        *string `json:"status"`
}

type ToggleTaskRequest struct {
	Done bool `json:"done"`
}
