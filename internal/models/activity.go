package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ActivityLog struct {
	bun.BaseModel `bun:"table:activity_log"`
	ID            string    `bun:"id,pk" json:"id"`
	UserID        string    `bun:"user_id" json:"-"`
	GameName      string    `bun:"game_name" json:"game_name" validate:"required"`
	GameSlug      string    `bun:"game_slug" json:"game_id" validate:"required"`
	Date          time.Time `bun:"date" json:"date"`
	Accuracy      int       `bun:"accuracy" json:"accuracy"`
	Correct       int       `bun:"correct" json:"correct" validate:"gte=0,ltefield=Total"`
	Total         int       `bun:"total" json:"total" validate:"gte=0"`
	Type          Domain    `bun:"type" json:"type" validate:"required,oneof=literacy numeracy"`
	Duration      int       `bun:"duration" json:"duration" validate:"gte=0"`
}
