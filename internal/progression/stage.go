package progression

import (
	"errors"
	"strings"
	"time"

	"canedu/internal/models"
)

const (
	MinStageSize     = 5
	MaxStageSize     = 10
	DefaultStageSize = 5
)

var (
	ErrStageNotAnswerable = errors.New("stage is not waiting for an answer")
	ErrStageNotAnswered   = errors.New("current question has not been answered")
	ErrStageCompleted     = errors.New("stage already completed")
	ErrStageEmpty         = errors.New("stage has no questions")
)

func ClampStageSize(n int) int {
	if n < MinStageSize {
		return MinStageSize
	}
	if n > MaxStageSize {
		return MaxStageSize
	}
	return n
}

func NewStage(id, userID string, game *models.Game, level int, questions []*models.Question, now time.Time) (*models.StageSession, error) {
	if len(questions) == 0 {
		return nil, ErrStageEmpty
	}

	items := make([]*models.StageQuestion, 0, len(questions))
	for _, q := range questions {
		items = append(items, &models.StageQuestion{Question: q})
	}

	return &models.StageSession{
		ID:        id,
		UserID:    userID,
		GameSlug:  game.Slug,
		Domain:    game.Domain,
		Level:     level,
		Questions: items,
		State:     models.StageStateQuestion,
		StartedAt: now.UTC(),
	}, nil
}

// MatchAnswer compares answers case-insensitively, ignoring surrounding and
// repeated inner whitespace.
func MatchAnswer(expected, given string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(expected), " "), strings.Join(strings.Fields(given), " "))
}

// Answer moves question -> answered_correct | answered_incorrect.
func Answer(s *models.StageSession, choice string, now time.Time) (bool, error) {
	if s.State == models.StageStateCompleted {
		return false, ErrStageCompleted
	}
	if s.State != models.StageStateQuestion {
		return false, ErrStageNotAnswerable
	}
	current := s.Current()
	if current == nil || current.Question == nil {
		return false, ErrStageEmpty
	}

	correct := MatchAnswer(current.Question.Answer, choice)
	answeredAt := now.UTC()
	expected := current.Question.Answer
	current.Choice = &choice
	current.Correct = &correct
	current.AnsweredAt = &answeredAt
	current.Expected = &expected

	s.Total++
	if correct {
		s.Correct++
		s.State = models.StageStateAnsweredCorrect
	} else {
		s.State = models.StageStateAnsweredIncorrect
	}
	return correct, nil
}

// Advance moves an answered stage to the next question, or completes it
// after the last one. It reports whether the stage is now completed.
func Advance(s *models.StageSession, now time.Time) (bool, error) {
	switch s.State {
	case models.StageStateCompleted:
		return false, ErrStageCompleted
	case models.StageStateAnsweredCorrect, models.StageStateAnsweredIncorrect:
	default:
		return false, ErrStageNotAnswered
	}

	if s.Index+1 < len(s.Questions) {
		s.Index++
		s.State = models.StageStateQuestion
		return false, nil
	}

	completedAt := now.UTC()
	s.State = models.StageStateCompleted
	s.CompletedAt = &completedAt
	return true, nil
}

// Duration is the stage length in whole seconds.
func Duration(s *models.StageSession) int {
	if s.CompletedAt == nil {
		return 0
	}
	return int(s.CompletedAt.Sub(s.StartedAt).Seconds())
}
