package progression

import (
	"testing"
	"time"

	"canedu/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func TestRecordAnswerCounters(t *testing.T) {
	r := DefaultRules()
	s := NewScore("u1")

	_, err := r.RecordAnswer(s, models.DomainLiteracy, true, now)
	require.NoError(t, err)
	_, err = r.RecordAnswer(s, models.DomainNumeracy, false, now)
	require.NoError(t, err)
	_, err = r.RecordAnswer(s, models.DomainNumeracy, true, now)
	require.NoError(t, err)

	assert.Equal(t, 1, s.LiteracyCorrect)
	assert.Equal(t, 1, s.LiteracyAttempted)
	assert.Equal(t, 1, s.NumeracyCorrect)
	assert.Equal(t, 2, s.NumeracyAttempted)
	assert.Equal(t, 2*PointsPerCorrect, s.TotalScore)
	assert.Equal(t, now, s.UpdatedAt)

	_, err = r.RecordAnswer(s, models.Domain("science"), true, now)
	assert.ErrorIs(t, err, ErrInvalidDomain)
	assert.Equal(t, 3, s.Attempted())
}

func TestRecordAnswerMilestone(t *testing.T) {
	r := DefaultRules()

	tests := []struct {
		name      string
		correct   int
		wantLevel int
	}{
		{"proficient bumps level", 40, 2},
		{"below threshold keeps level", 38, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScore("u1")
			leveled := 0
			for i := 0; i < ScoreMilestone; i++ {
				ok, err := r.RecordAnswer(s, models.DomainLiteracy, i < tt.correct, now)
				require.NoError(t, err)
				if ok {
					leveled++
				}
			}
			assert.Equal(t, tt.wantLevel, s.CurrentLevel)
			assert.Equal(t, tt.wantLevel-1, leveled)
		})
	}
}

func TestRecordAnswerMilestoneOnlyOnMultiples(t *testing.T) {
	r := DefaultRules()
	s := NewScore("u1")

	for i := 0; i < ScoreMilestone-1; i++ {
		ok, err := r.RecordAnswer(s, models.DomainNumeracy, true, now)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 1, s.CurrentLevel)

	ok, err := r.RecordAnswer(s, models.DomainNumeracy, true, now)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, s.CurrentLevel)
}

func TestRecordAnswerLevelCapped(t *testing.T) {
	r := DefaultRules()
	s := NewScore("u1")
	s.CurrentLevel = MaxLevel
	s.NumeracyAttempted = ScoreMilestone - 1
	s.NumeracyCorrect = ScoreMilestone - 1

	ok, err := r.RecordAnswer(s, models.DomainNumeracy, true, now)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, MaxLevel, s.CurrentLevel)
}

func TestMergeSync(t *testing.T) {
	r := DefaultRules()
	s := NewScore("u1")
	s.Version = 3
	s.TotalScore = 100
	s.LiteracyCorrect = 8
	s.LiteracyAttempted = 10
	s.NumeracyCorrect = 5
	s.NumeracyAttempted = 5
	s.ElapsedSeconds = 600

	err := r.MergeSync(s, &models.ScoreSync{
		Version:           3,
		TotalScore:        90,
		LiteracyCorrect:   9,
		LiteracyAttempted: 12,
		NumeracyCorrect:   1,
		NumeracyAttempted: 2,
		CurrentLevel:      14,
		SessionSeconds:    30,
		ElapsedSeconds:    400,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, 100, s.TotalScore)
	assert.Equal(t, 9, s.LiteracyCorrect)
	assert.Equal(t, 12, s.LiteracyAttempted)
	assert.Equal(t, 5, s.NumeracyCorrect)
	assert.Equal(t, 5, s.NumeracyAttempted)
	assert.Equal(t, MaxLevel, s.CurrentLevel)
	assert.Equal(t, 30, s.SessionSeconds)
	assert.Equal(t, 600, s.ElapsedSeconds)
}

func TestMergeSyncRejectsStaleAndInvalid(t *testing.T) {
	r := DefaultRules()
	s := NewScore("u1")
	s.Version = 4

	err := r.MergeSync(s, &models.ScoreSync{Version: 3, TotalScore: 500}, now)
	assert.ErrorIs(t, err, ErrStaleSnapshot)
	assert.Equal(t, 0, s.TotalScore)

	err = r.MergeSync(s, &models.ScoreSync{Version: 4, LiteracyCorrect: 3, LiteracyAttempted: 2}, now)
	assert.ErrorIs(t, err, ErrInvalidCounter)
	assert.Equal(t, 0, s.LiteracyAttempted)
}
