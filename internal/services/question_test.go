package services

import (
	"errors"
	"fmt"
	"testing"

	"canedu/internal/content"
	"canedu/internal/models"
	"canedu/internal/progression"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levelBank(level, n int) []*models.Question {
	qs := make([]*models.Question, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, &models.Question{Level: level, Prompt: fmt.Sprintf("L%d-Q%d", level, i), Answer: "x"})
	}
	return qs
}

func TestAssembleStageFollowsPlan(t *testing.T) {
	draw := func(level, count int) ([]*models.Question, error) {
		return levelBank(level, 10)[:count], nil
	}
	bank := func(level int) ([]*models.Question, error) {
		t.Fatalf("bank should not be used, level %d", level)
		return nil, nil
	}

	qs, err := assembleStage(map[int]int{5: 3, 4: 1, 3: 1}, 5, 5, draw, bank)
	require.NoError(t, err)
	require.Len(t, qs, 5)

	perLevel := map[int]int{}
	for _, q := range qs {
		perLevel[q.Level]++
	}
	assert.Equal(t, map[int]int{5: 3, 4: 1, 3: 1}, perLevel)
}

func TestAssembleStageTopsUpFromBank(t *testing.T) {
	draw := func(level, count int) ([]*models.Question, error) {
		return nil, nil
	}
	bank := func(level int) ([]*models.Question, error) {
		if level == 2 {
			return levelBank(2, 3), nil
		}
		return levelBank(level, 5), nil
	}

	qs, err := assembleStage(map[int]int{2: 6}, 2, 6, draw, bank)
	require.NoError(t, err)
	require.Len(t, qs, 6)

	prompts := map[string]bool{}
	for _, q := range qs {
		assert.False(t, prompts[q.Prompt], "duplicate %s", q.Prompt)
		prompts[q.Prompt] = true
		assert.LessOrEqual(t, q.Level, 2)
	}
}

func TestAssembleStageSkipsDuplicates(t *testing.T) {
	dup := &models.Question{Level: 1, Prompt: "same"}
	draw := func(level, count int) ([]*models.Question, error) {
		return []*models.Question{dup, dup, dup}, nil
	}
	bank := func(level int) ([]*models.Question, error) {
		return levelBank(1, 4), nil
	}

	qs, err := assembleStage(map[int]int{1: 3}, 1, 5, draw, bank)
	require.NoError(t, err)
	require.Len(t, qs, 5)
	assert.Equal(t, "same", qs[0].Prompt)
}

func TestAssembleStageBorrowsFromHarderLevels(t *testing.T) {
	draw := func(level, count int) ([]*models.Question, error) {
		return nil, nil
	}
	bank := func(level int) ([]*models.Question, error) {
		return levelBank(level, 3), nil
	}

	qs, err := assembleStage(map[int]int{1: 8}, 1, 8, draw, bank)
	require.NoError(t, err)
	require.Len(t, qs, 8)

	perLevel := map[int]int{}
	for _, q := range qs {
		perLevel[q.Level]++
	}
	assert.Equal(t, map[int]int{1: 3, 2: 3, 3: 2}, perLevel)
}

func TestAssembleStageKeepsSharedPrompts(t *testing.T) {
	game, err := content.Game("spelling-bee")
	require.NoError(t, err)

	draw := func(level, count int) ([]*models.Question, error) {
		return nil, nil
	}
	bank := func(level int) ([]*models.Question, error) {
		return content.Questions(game, level)
	}

	qs, err := assembleStage(map[int]int{1: progression.DefaultStageSize}, 1, progression.DefaultStageSize, draw, bank)
	require.NoError(t, err)
	require.Len(t, qs, progression.DefaultStageSize)

	answers := map[string]bool{}
	for _, q := range qs {
		assert.False(t, answers[q.Answer], "duplicate %s", q.Answer)
		answers[q.Answer] = true
	}
}

func TestAssembleStageFromContent(t *testing.T) {
	games, err := content.Games()
	require.NoError(t, err)
	mix, err := progression.NewLevelMix()
	require.NoError(t, err)

	draw := func(level, count int) ([]*models.Question, error) {
		return nil, nil
	}

	tests := []struct {
		level int
		size  int
	}{
		{progression.MinLevel, progression.DefaultStageSize},
		{progression.MaxLevel, progression.DefaultStageSize},
		{progression.MinLevel, progression.MaxStageSize},
		{progression.MaxLevel, progression.MaxStageSize},
	}

	for _, g := range games {
		bank := func(level int) ([]*models.Question, error) {
			return content.Questions(g, level)
		}
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s/level-%d/size-%d", g.Slug, tt.level, tt.size), func(t *testing.T) {
				qs, err := assembleStage(mix.Plan(tt.level, tt.size), tt.level, tt.size, draw, bank)
				require.NoError(t, err)
				assert.Len(t, qs, tt.size)
			})
		}
	}
}

func TestAssembleStagePropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	draw := func(level, count int) ([]*models.Question, error) { return nil, boom }
	bank := func(level int) ([]*models.Question, error) { return nil, nil }

	_, err := assembleStage(map[int]int{1: 5}, 1, 5, draw, bank)
	assert.ErrorIs(t, err, boom)
}

func TestShuffleChoicesKeepsSet(t *testing.T) {
	original := []string{"a", "b", "c", "d"}
	q := &models.Question{Choices: original}
	shuffleChoices(q)
	assert.ElementsMatch(t, original, q.Choices)
	assert.Equal(t, []string{"a", "b", "c", "d"}, original)
}
