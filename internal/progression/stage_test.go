package progression

import (
	"testing"
	"time"

	"canedu/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStage(t *testing.T) *models.StageSession {
	t.Helper()
	game := &models.Game{Slug: "spelling-bee", Domain: models.DomainLiteracy}
	questions := []*models.Question{
		{ID: 1, Level: 1, Prompt: "Spell: moose", Answer: "moose"},
		{ID: 2, Level: 1, Prompt: "Spell: maple", Answer: "maple"},
	}
	s, err := NewStage("s1", "u1", game, 1, questions, now)
	require.NoError(t, err)
	return s
}

func TestNewStage(t *testing.T) {
	s := newTestStage(t)

	assert.Equal(t, models.StageStateQuestion, s.State)
	assert.Equal(t, models.DomainLiteracy, s.Domain)
	assert.Len(t, s.Questions, 2)
	assert.Equal(t, int64(1), s.Current().Question.ID)

	_, err := NewStage("s2", "u1", &models.Game{Slug: "x"}, 1, nil, now)
	assert.ErrorIs(t, err, ErrStageEmpty)
}

func TestStageFlow(t *testing.T) {
	s := newTestStage(t)

	correct, err := Answer(s, "  MOOSE ", now)
	require.NoError(t, err)
	assert.True(t, correct)
	assert.Equal(t, models.StageStateAnsweredCorrect, s.State)
	assert.Equal(t, "moose", *s.Questions[0].Expected)

	_, err = Answer(s, "moose", now)
	assert.ErrorIs(t, err, ErrStageNotAnswerable)

	done, err := Advance(s, now)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, models.StageStateQuestion, s.State)
	assert.Equal(t, 1, s.Index)

	_, err = Advance(s, now)
	assert.ErrorIs(t, err, ErrStageNotAnswered)

	correct, err = Answer(s, "mapel", now)
	require.NoError(t, err)
	assert.False(t, correct)
	assert.Equal(t, models.StageStateAnsweredIncorrect, s.State)

	done, err = Advance(s, now.Add(42*time.Second))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, models.StageStateCompleted, s.State)
	assert.Equal(t, 1, s.Correct)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 42, Duration(s))

	_, err = Advance(s, now)
	assert.ErrorIs(t, err, ErrStageCompleted)
	_, err = Answer(s, "x", now)
	assert.ErrorIs(t, err, ErrStageCompleted)
}

func TestMatchAnswer(t *testing.T) {
	assert.True(t, MatchAnswer("Prince Edward Island", "prince  edward island"))
	assert.True(t, MatchAnswer("12", " 12 "))
	assert.False(t, MatchAnswer("12", "13"))
	assert.False(t, MatchAnswer("moose", ""))
}

func TestClampStageSize(t *testing.T) {
	assert.Equal(t, MinStageSize, ClampStageSize(0))
	assert.Equal(t, 7, ClampStageSize(7))
	assert.Equal(t, MaxStageSize, ClampStageSize(99))
}

func TestLevelMix(t *testing.T) {
	mix, err := NewLevelMix()
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		picked := mix.Pick(5)
		assert.GreaterOrEqual(t, picked, 3)
		assert.LessOrEqual(t, picked, 5)
	}

	for i := 0; i < 50; i++ {
		assert.Equal(t, 1, mix.Pick(1))
	}

	plan := mix.Plan(4, 8)
	n := 0
	for level, count := range plan {
		assert.GreaterOrEqual(t, level, 2)
		n += count
	}
	assert.Equal(t, 8, n)
}
