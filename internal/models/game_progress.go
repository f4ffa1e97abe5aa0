package models

import (
	"time"

	"github.com/uptrace/bun"
)

// GameProgress is the leveling state of one user in one game.
type GameProgress struct {
	bun.BaseModel   `bun:"table:game_progress"`
	ID              int64     `bun:"id,pk,autoincrement" json:"-"`
	UserID          string    `bun:"user_id" json:"user_id"`
	GameSlug        string    `bun:"game_slug" json:"game_id"`
	Level           int       `bun:"level" json:"level"`
	StagesCompleted int       `bun:"stages_completed" json:"stages_completed"`
	Correct         int       `bun:"correct" json:"correct"`
	Total           int       `bun:"total" json:"total"`
	UnlockedLevels  []int     `bun:"unlocked_levels,array" json:"unlocked_levels"`
	Version         int64     `bun:"version" json:"version"`
	CreatedAt       time.Time `bun:"created_at,default:current_timestamp" json:"-"`
	UpdatedAt       time.Time `bun:"updated_at" json:"updated_at"`

	Accuracy   int  `bun:"-" json:"accuracy"`
	CanLevelUp bool `bun:"-" json:"can_level_up"`
}

type StageResult struct {
	Correct int `json:"correct" validate:"gte=0,ltefield=Total"`
	Total   int `json:"total" validate:"gt=0"`
}

type LevelUpResult struct {
	Progress  *GameProgress `json:"progress"`
	LeveledUp bool          `json:"leveled_up"`
}
