package models

import (
	"github.com/uptrace/bun"
)

// db
type Question struct {
	bun.BaseModel `bun:"table:question"`
	ID            int64    `bun:"id,pk,autoincrement" json:"id"`
	GameSlug      string   `bun:"game_slug" json:"game_slug"`
	Level         int      `bun:"level" json:"level"`
	Prompt        string   `bun:"prompt" json:"prompt"`
	Choices       []string `bun:"choices,type:jsonb" json:"choices,omitempty"`
	Answer        string   `bun:"answer" json:"-"`
	Hint          string   `bun:"hint" json:"hint,omitempty"`
	Speak         string   `bun:"speak" json:"speak,omitempty"`
	Enabled       bool     `bun:"enabled" json:"-"`
}

type LevelQuestions struct {
	GameSlug  string      `json:"game_slug"`
	Level     int         `json:"level"`
	Questions []*Question `json:"questions"`
}
