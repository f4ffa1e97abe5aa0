package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:user"`
	ID            string     `bun:"id,pk" json:"id"`
	Email         string     `bun:"email" json:"email"`
	DisplayName   string     `bun:"display_name" json:"display_name"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	LastSeenAt    *time.Time `bun:"last_seen_at" json:"last_seen_at"`

	IsNewUser bool `bun:"-" json:"is_new_user"`
}

// UserFromAuth only use in middleware
type UserFromAuth struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}
