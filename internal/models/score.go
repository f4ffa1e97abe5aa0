package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ScoreSnapshot holds the global score totals of a user.
type ScoreSnapshot struct {
	bun.BaseModel     `bun:"table:score_snapshot"`
	UserID            string    `bun:"user_id,pk" json:"user_id"`
	TotalScore        int       `bun:"total_score" json:"total_score"`
	LiteracyCorrect   int       `bun:"literacy_correct" json:"literacy_correct"`
	LiteracyAttempted int       `bun:"literacy_attempted" json:"literacy_attempted"`
	NumeracyCorrect   int       `bun:"numeracy_correct" json:"numeracy_correct"`
	NumeracyAttempted int       `bun:"numeracy_attempted" json:"numeracy_attempted"`
	CurrentLevel      int       `bun:"current_level" json:"current_level"`
	SessionSeconds    int       `bun:"session_seconds" json:"session_seconds"`
	ElapsedSeconds    int       `bun:"elapsed_seconds" json:"elapsed_seconds"`
	Version           int64     `bun:"version" json:"version"`
	UpdatedAt         time.Time `bun:"updated_at" json:"updated_at"`
}

func (s *ScoreSnapshot) Correct() int {
	return s.LiteracyCorrect + s.NumeracyCorrect
}

func (s *ScoreSnapshot) Attempted() int {
	return s.LiteracyAttempted + s.NumeracyAttempted
}

type AnswerRecord struct {
	Type    Domain `json:"type" validate:"required,oneof=literacy numeracy"`
	Correct bool   `json:"correct"`
}

type AnswerResult struct {
	Score     *ScoreSnapshot `json:"score"`
	LeveledUp bool           `json:"leveled_up"`
}

type ScoreSync struct {
	Version           int64 `json:"version" validate:"gte=0"`
	TotalScore        int   `json:"total_score" validate:"gte=0"`
	LiteracyCorrect   int   `json:"literacy_correct" validate:"gte=0,ltefield=LiteracyAttempted"`
	LiteracyAttempted int   `json:"literacy_attempted" validate:"gte=0"`
	NumeracyCorrect   int   `json:"numeracy_correct" validate:"gte=0,ltefield=NumeracyAttempted"`
	NumeracyAttempted int   `json:"numeracy_attempted" validate:"gte=0"`
	CurrentLevel      int   `json:"current_level" validate:"gte=0,lte=10"`
	SessionSeconds    int   `json:"session_seconds" validate:"gte=0"`
	ElapsedSeconds    int   `json:"elapsed_seconds" validate:"gte=0"`
}
