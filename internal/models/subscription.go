package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription statuses
const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
	SubscriptionCanceled = "canceled"
	SubscriptionExpired  = "expired"
)

// Subscription mirrors the billing provider's state for a user. Rows are
// written by the provider webhook integration; this service only reads them
// to gate AI planning features.
type Subscription struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID  `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	Provider         string     `json:"provider" gorm:"not null"` // appstore, play, stripe
	Status           string     `json:"status" gorm:"not null;default:'expired'"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// HasAccess reports whether the subscription currently unlocks paid features.
func (s *Subscription) HasAccess() bool {
	return s.Status == SubscriptionActive || s.Status == SubscriptionTrialing
}
