package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    int
	}{
		{"nothing attempted", 0, 0, 0},
		{"negative total", 3, -1, 0},
		{"all correct", 10, 10, 100},
		{"rounds half up", 1, 8, 13},
		{"rounds down", 2, 3, 67},
		{"eighty percent", 40, 50, 80},
		{"seventy six percent", 38, 50, 76},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accuracy(tt.correct, tt.total))
		})
	}
}

func TestNewProgressDefaults(t *testing.T) {
	p := NewProgress("u1", "spelling-bee")

	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0, p.StagesCompleted)
	assert.Equal(t, 0, p.Correct)
	assert.Equal(t, 0, p.Total)
	assert.Equal(t, []int{1}, p.UnlockedLevels)
}

func TestCanLevelUpAfterFiftyStages(t *testing.T) {
	r := DefaultRules()

	tests := []struct {
		name    string
		correct int
		want    bool
	}{
		{"80 percent passes", 40, true},
		{"77 percent passes", 77, true},
		{"76 percent fails", 38, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgress("u1", "maple-addition")
			total := 50
			if tt.correct == 77 {
				total = 100
			}
			for i := 0; i < StagesPerLevel; i++ {
				require.NoError(t, r.RecordStage(p, 0, 1))
			}
			p.Correct = tt.correct
			p.Total = total

			assert.Equal(t, 50, p.StagesCompleted)
			assert.Equal(t, tt.want, r.CanLevelUp(p))
		})
	}
}

func TestCanLevelUpNeedsStages(t *testing.T) {
	r := DefaultRules()
	p := NewProgress("u1", "maple-addition")

	for i := 0; i < StagesPerLevel-1; i++ {
		require.NoError(t, r.RecordStage(p, 5, 5))
	}
	assert.False(t, r.CanLevelUp(p))

	require.NoError(t, r.RecordStage(p, 5, 5))
	assert.True(t, r.CanLevelUp(p))
}

func TestRecordStage(t *testing.T) {
	r := DefaultRules()
	p := NewProgress("u1", "typing-trail")

	require.NoError(t, r.RecordStage(p, 4, 5))
	assert.Equal(t, 1, p.StagesCompleted)
	assert.Equal(t, 4, p.Correct)
	assert.Equal(t, 5, p.Total)

	assert.ErrorIs(t, r.RecordStage(p, 6, 5), ErrInvalidStage)
	assert.ErrorIs(t, r.RecordStage(p, 0, 0), ErrInvalidStage)
	assert.ErrorIs(t, r.RecordStage(p, -1, 5), ErrInvalidStage)
	assert.Equal(t, 1, p.StagesCompleted)
}

func TestRecordStageSaturates(t *testing.T) {
	r := DefaultRules()
	p := NewProgress("u1", "typing-trail")

	for i := 0; i < StagesPerLevel+5; i++ {
		require.NoError(t, r.RecordStage(p, 1, 1))
	}

	assert.Equal(t, StagesPerLevel, p.StagesCompleted)
	assert.Equal(t, StagesPerLevel+5, p.Total)
}

func TestLevelUpResetsCounters(t *testing.T) {
	r := DefaultRules()
	p := NewProgress("u1", "province-capitals")
	p.StagesCompleted = 50
	p.Correct = 40
	p.Total = 50

	ok, err := r.LevelUp(p)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 0, p.StagesCompleted)
	assert.Equal(t, 0, p.Correct)
	assert.Equal(t, 0, p.Total)
	assert.Equal(t, []int{1, 2}, p.UnlockedLevels)
}

func TestLevelUpNotEligible(t *testing.T) {
	r := DefaultRules()
	p := NewProgress("u1", "province-capitals")
	p.StagesCompleted = 50
	p.Correct = 38
	p.Total = 50

	ok, err := r.LevelUp(p)
	assert.ErrorIs(t, err, ErrNotEligible)
	assert.False(t, ok)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 50, p.StagesCompleted)
}

func TestLevelNeverExceedsMax(t *testing.T) {
	r := DefaultRules()
	p := NewProgress("u1", "pattern-prairie")

	for i := 0; i < 25; i++ {
		p.StagesCompleted = 50
		p.Correct = 50
		p.Total = 50
		_, err := r.LevelUp(p)
		require.NoError(t, err)
	}

	assert.Equal(t, MaxLevel, p.Level)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, p.UnlockedLevels)

	ok, err := r.LevelUp(p)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, MaxLevel, p.Level)
}

func TestDecorate(t *testing.T) {
	r := DefaultRules()
	p := NewProgress("u1", "pattern-prairie")
	p.StagesCompleted = 50
	p.Correct = 40
	p.Total = 50

	r.Decorate(p)
	assert.Equal(t, 80, p.Accuracy)
	assert.True(t, p.CanLevelUp)

	p.Correct = 38
	r.Decorate(p)
	assert.Equal(t, 76, p.Accuracy)
	assert.False(t, p.CanLevelUp)
}

func TestDecorateAtMaxLevel(t *testing.T) {
	r := DefaultRules()
	p := NewProgress("u1", "pattern-prairie")
	p.Level = MaxLevel
	p.StagesCompleted = 50
	p.Correct = 40
	p.Total = 50

	r.Decorate(p)
	assert.True(t, p.CanLevelUp)

	ok, err := r.LevelUp(p)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, MaxLevel, p.Level)
}

func TestNormalize(t *testing.T) {
	r := Rules{StagesPerLevel: 0, Threshold: 120, MaxLevel: 42}.Normalize()
	assert.Equal(t, DefaultRules(), r)

	r = Rules{StagesPerLevel: 10, Threshold: 60, MaxLevel: 5}.Normalize()
	assert.Equal(t, 10, r.StagesPerLevel)
	assert.Equal(t, 60, r.Threshold)
	assert.Equal(t, 5, r.MaxLevel)
}
