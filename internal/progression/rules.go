// Package progression holds the leveling, scoring and stage rules shared by
// every game.
package progression

import (
	"errors"
	"math"
	"time"

	"canedu/internal/models"
)

const (
	MinLevel             = 1
	MaxLevel             = 10
	StagesPerLevel       = 50
	ProficiencyThreshold = 77
	PointsPerCorrect     = 10
	ScoreMilestone       = 50
)

var (
	ErrNotEligible  = errors.New("level up requirements not met")
	ErrInvalidStage = errors.New("invalid stage result")
)

type Rules struct {
	StagesPerLevel int
	Threshold      int
	MaxLevel       int
}

func DefaultRules() Rules {
	return Rules{
		StagesPerLevel: StagesPerLevel,
		Threshold:      ProficiencyThreshold,
		MaxLevel:       MaxLevel,
	}
}

// Normalize replaces unusable values with defaults.
func (r Rules) Normalize() Rules {
	d := DefaultRules()
	if r.StagesPerLevel <= 0 {
		r.StagesPerLevel = d.StagesPerLevel
	}
	if r.Threshold <= 0 || r.Threshold > 100 {
		r.Threshold = d.Threshold
	}
	if r.MaxLevel < MinLevel || r.MaxLevel > MaxLevel {
		r.MaxLevel = d.MaxLevel
	}
	return r
}

// Accuracy is round(correct/total*100), 0 when nothing was attempted.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func NewProgress(userID, gameSlug string) *models.GameProgress {
	return &models.GameProgress{
		UserID:         userID,
		GameSlug:       gameSlug,
		Level:          MinLevel,
		UnlockedLevels: []int{MinLevel},
	}
}

func (r Rules) CanLevelUp(p *models.GameProgress) bool {
	return p.StagesCompleted >= r.StagesPerLevel && Accuracy(p.Correct, p.Total) >= r.Threshold
}

// RecordStage adds one completed stage. The stage counter saturates at
// StagesPerLevel while correct/total keep accumulating.
func (r Rules) RecordStage(p *models.GameProgress, correct, total int) error {
	if total <= 0 || correct < 0 || correct > total {
		return ErrInvalidStage
	}

	if p.StagesCompleted < r.StagesPerLevel {
		p.StagesCompleted++
	}
	p.Correct += correct
	p.Total += total
	return nil
}

// LevelUp moves p to the next level. At the top level it reports false and
// leaves p untouched.
func (r Rules) LevelUp(p *models.GameProgress) (bool, error) {
	if p.Level >= r.MaxLevel {
		return false, nil
	}
	if !r.CanLevelUp(p) {
		return false, ErrNotEligible
	}

	p.Level++
	p.StagesCompleted = 0
	p.Correct = 0
	p.Total = 0
	if !containsLevel(p.UnlockedLevels, p.Level) {
		p.UnlockedLevels = append(p.UnlockedLevels, p.Level)
	}
	return true, nil
}

// Decorate fills the derived fields sent to clients. CanLevelUp is the plain
// stages and accuracy gate, so it may be true at the top level where LevelUp
// is a no-op.
func (r Rules) Decorate(p *models.GameProgress) *models.GameProgress {
	p.Accuracy = Accuracy(p.Correct, p.Total)
	p.CanLevelUp = r.CanLevelUp(p)
	return p
}

func containsLevel(levels []int, level int) bool {
	for _, l := range levels {
		if l == level {
			return true
		}
	}
	return false
}

func touch(t *time.Time, now time.Time) {
	*t = now.UTC()
}
