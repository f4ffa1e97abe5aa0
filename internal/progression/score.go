package progression

import (
	"errors"
	"time"

	"canedu/internal/models"
)

var (
	ErrInvalidDomain  = errors.New("invalid answer type")
	ErrStaleSnapshot  = errors.New("score snapshot is stale")
	ErrInvalidCounter = errors.New("correct count exceeds attempted count")
)

func NewScore(userID string) *models.ScoreSnapshot {
	return &models.ScoreSnapshot{
		UserID:       userID,
		CurrentLevel: MinLevel,
	}
}

// RecordAnswer counts one answer and checks the global milestone: every
// ScoreMilestone attempts, an overall accuracy at or above the threshold
// raises the overall level by one.
func (r Rules) RecordAnswer(s *models.ScoreSnapshot, domain models.Domain, correct bool, now time.Time) (bool, error) {
	switch domain {
	case models.DomainLiteracy:
		s.LiteracyAttempted++
		if correct {
			s.LiteracyCorrect++
		}
	case models.DomainNumeracy:
		s.NumeracyAttempted++
		if correct {
			s.NumeracyCorrect++
		}
	default:
		return false, ErrInvalidDomain
	}

	if correct {
		s.TotalScore += PointsPerCorrect
	}
	if s.CurrentLevel < MinLevel {
		s.CurrentLevel = MinLevel
	}
	touch(&s.UpdatedAt, now)

	attempted := s.Attempted()
	if attempted%ScoreMilestone != 0 {
		return false, nil
	}
	if Accuracy(s.Correct(), attempted) < r.Threshold || s.CurrentLevel >= r.MaxLevel {
		return false, nil
	}

	s.CurrentLevel++
	return true, nil
}

// MergeSync folds a client snapshot into the stored one. Counters only grow.
func (r Rules) MergeSync(s *models.ScoreSnapshot, in *models.ScoreSync, now time.Time) error {
	if in.Version != s.Version {
		return ErrStaleSnapshot
	}
	if in.LiteracyCorrect > in.LiteracyAttempted || in.NumeracyCorrect > in.NumeracyAttempted {
		return ErrInvalidCounter
	}

	// pairs move together so correct never exceeds attempted
	if in.LiteracyAttempted > s.LiteracyAttempted {
		s.LiteracyAttempted = in.LiteracyAttempted
		s.LiteracyCorrect = max(s.LiteracyCorrect, in.LiteracyCorrect)
	}
	if in.NumeracyAttempted > s.NumeracyAttempted {
		s.NumeracyAttempted = in.NumeracyAttempted
		s.NumeracyCorrect = max(s.NumeracyCorrect, in.NumeracyCorrect)
	}
	s.TotalScore = max(s.TotalScore, in.TotalScore)
	s.CurrentLevel = min(max(s.CurrentLevel, in.CurrentLevel, MinLevel), r.MaxLevel)
	s.SessionSeconds = max(s.SessionSeconds, in.SessionSeconds)
	s.ElapsedSeconds = max(s.ElapsedSeconds, in.ElapsedSeconds)
	touch(&s.UpdatedAt, now)
	return nil
}
