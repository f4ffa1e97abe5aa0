package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	SubscriptionStatusFree     = "free"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusPastDue  = "past_due"
)

type Subscription struct {
	bun.BaseModel    `bun:"table:subscription"`
	UserID           string     `bun:"user_id,pk" json:"user_id"`
	Status           string     `bun:"status" json:"status"`
	Plan             string     `bun:"plan" json:"plan"`
	CurrentPeriodEnd *time.Time `bun:"current_period_end" json:"current_period_end"`
	UpdatedAt        time.Time  `bun:"updated_at" json:"updated_at"`

	Active bool `bun:"-" json:"active"`
}

func (s *Subscription) IsActive(now time.Time) bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing:
	default:
		return false
	}
	return s.CurrentPeriodEnd == nil || now.Before(*s.CurrentPeriodEnd)
}
