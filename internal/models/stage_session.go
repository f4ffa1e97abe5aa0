package models

import (
	"time"
)

type StageState string

const (
	StageStateQuestion          StageState = "question"
	StageStateAnsweredCorrect   StageState = "answered_correct"
	StageStateAnsweredIncorrect StageState = "answered_incorrect"
	StageStateCompleted         StageState = "completed"
)

type StageQuestion struct {
	Question   *Question  `json:"question"`
	Choice     *string    `json:"choice"`
	Correct    *bool      `json:"correct"`
	Expected   *string    `json:"expected,omitempty"`
	AnsweredAt *time.Time `json:"answered_at"`
}

// StageSession is one stage of a game in progress, kept in redis.
type StageSession struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	GameSlug    string           `json:"game_id"`
	Domain      Domain           `json:"type"`
	Level       int              `json:"level"`
	Questions   []*StageQuestion `json:"questions"`
	Index       int              `json:"index"`
	State       StageState       `json:"state"`
	Correct     int              `json:"correct"`
	Total       int              `json:"total"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at"`
	// completion side effects already applied, by name
	Applied  []string `json:"-"`
	Recorded bool     `json:"recorded"`
}

func (s *StageSession) HasApplied(step string) bool {
	for _, v := range s.Applied {
		if v == step {
			return true
		}
	}
	return false
}

func (s *StageSession) Current() *StageQuestion {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return nil
	}
	return s.Questions[s.Index]
}

type StageAnswer struct {
	Choice string `json:"choice" validate:"required"`
}

type StageCompletion struct {
	Session  *StageSession  `json:"session"`
	Progress *GameProgress  `json:"progress,omitempty"`
	Score    *ScoreSnapshot `json:"score,omitempty"`
	Activity *ActivityLog   `json:"activity,omitempty"`
}
