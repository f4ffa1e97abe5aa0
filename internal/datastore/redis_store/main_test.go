package redis_store

import (
	"context"
	"testing"
	"time"

	"canedu/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestStageSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)

	session := &models.StageSession{
		ID:       "s1",
		UserID:   "u1",
		GameSlug: "maple-addition",
		Domain:   models.DomainNumeracy,
		Level:    2,
		Questions: []*models.StageQuestion{
			{Question: &models.Question{ID: 7, Prompt: "2 + 3 = ?", Choices: []string{"4", "5"}, Answer: "5"}},
		},
		State:     models.StageStateQuestion,
		StartedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}

	_, err := SaveStageSession(ctx, client, session, time.Hour)
	require.NoError(t, err)
	assert.True(t, mr.Exists("stage:maple-addition:u1"))

	got, err := GetStageSession(ctx, client, "maple-addition", "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, "5", got.Questions[0].Question.Answer)
	assert.True(t, session.StartedAt.Equal(got.StartedAt))

	require.NoError(t, DeleteStageSession(ctx, client, "maple-addition", "u1"))
	_, err = GetStageSession(ctx, client, "maple-addition", "u1")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestSaveStageSessionRejectsMissingKeys(t *testing.T) {
	_, client := newClient(t)
	_, err := SaveStageSession(context.Background(), client, &models.StageSession{GameSlug: "x"}, 0)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestQuestionGroups(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)

	require.NoError(t, AddQuestionsToGroup(ctx, client, "Spelling-Bee", 3, []int64{11, 12, 13, 14}))
	assert.True(t, mr.TTL("game:spelling-bee:question:level:3") > 0)

	n, err := QuestionGroupSize(ctx, client, "spelling-bee", 3)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	ids, err := RandomQuestionsFromGroup(ctx, client, "spelling-bee", 3, 3)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	for _, id := range ids {
		assert.Contains(t, []int64{11, 12, 13, 14}, id)
	}

	ids, err = RandomQuestionsFromGroup(ctx, client, "spelling-bee", 3, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{11, 12, 13, 14}, ids)

	require.NoError(t, AddQuestionsToGroup(ctx, client, "spelling-bee", 3, []int64{20}))
	n, err = QuestionGroupSize(ctx, client, "spelling-bee", 3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, AddQuestionsToGroup(ctx, client, "spelling-bee", 4, []int64{30}))
	require.NoError(t, DeleteGameQuestionGroups(ctx, client, "spelling-bee"))
	assert.False(t, mr.Exists("game:spelling-bee:question:level:3"))
	assert.False(t, mr.Exists("game:spelling-bee:question:level:4"))
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)
	weekly := WeeklyLeaderboard("2026-10-15")

	_, err := IncrLeaderboard(ctx, client, weekly, "u1", 10, WEEKLY_LEADERBOARD_TTL)
	require.NoError(t, err)
	_, err = IncrLeaderboard(ctx, client, weekly, "u2", 30, WEEKLY_LEADERBOARD_TTL)
	require.NoError(t, err)
	score, err := IncrLeaderboard(ctx, client, weekly, "u1", 40, WEEKLY_LEADERBOARD_TTL)
	require.NoError(t, err)
	assert.Equal(t, 50.0, score)
	assert.True(t, mr.TTL("leaderboard:weekly:2026-10-15") > 0)

	items, err := GetLeaderboard(ctx, client, weekly, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "u1", items[0].UserID)
	assert.Equal(t, 1, items[0].Rank)
	assert.Equal(t, "u2", items[1].UserID)
	assert.Equal(t, 2, items[1].Rank)

	me, err := GetRankWithScore(ctx, client, weekly, "u2")
	require.NoError(t, err)
	assert.Equal(t, 2, me.Rank)
	assert.Equal(t, 30.0, me.Score)

	_, err = GetRankWithScore(ctx, client, weekly, "nobody")
	assert.ErrorIs(t, err, redis.Nil)

	count, err := GetLeaderboardParticipantsCount(ctx, client, weekly)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, ClearLeaderboards(ctx, client, LEADERBOARD_WEEKLY+":*"))
	assert.False(t, mr.Exists("leaderboard:weekly:2026-10-15"))
}

func TestClearLeaderboardsKeepsNamedBoards(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)

	previous := WeeklyLeaderboard("2026-10-12")
	current := WeeklyLeaderboard("2026-10-19")
	for _, name := range []string{previous, current} {
		_, err := IncrLeaderboard(ctx, client, name, "u1", 10, WEEKLY_LEADERBOARD_TTL)
		require.NoError(t, err)
	}
	ttl := mr.TTL("leaderboard:weekly:2026-10-19")

	require.NoError(t, ClearLeaderboards(ctx, client, LEADERBOARD_WEEKLY+":*", current))
	assert.False(t, mr.Exists("leaderboard:weekly:2026-10-12"))
	assert.True(t, mr.Exists("leaderboard:weekly:2026-10-19"))
	assert.Equal(t, ttl, mr.TTL("leaderboard:weekly:2026-10-19"))

	score, err := IncrLeaderboard(ctx, client, current, "u1", 5, WEEKLY_LEADERBOARD_TTL)
	require.NoError(t, err)
	assert.EqualValues(t, 15, score)
}

func TestSetLeaderboardAndEmptyLimit(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)

	require.NoError(t, SetLeaderboard(ctx, client, LEADERBOARD_OVERALL, []*models.LeaderboardItem{
		{UserID: "a", Score: 5},
		{UserID: "b", Score: 9},
	}))

	items, err := GetLeaderboard(ctx, client, LEADERBOARD_OVERALL, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].UserID)

	items, err = GetLeaderboard(ctx, client, LEADERBOARD_OVERALL, 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, ClearLeaderboard(ctx, client, LEADERBOARD_OVERALL))
	items, err = GetLeaderboard(ctx, client, LEADERBOARD_OVERALL, 5)
	require.NoError(t, err)
	assert.Empty(t, items)
}
