package redis_store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"canedu/internal/models"
	"canedu/internal/pkg/caching"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	LEADERBOARD_OVERALL = "overall"
	LEADERBOARD_WEEKLY  = "weekly"

	QUESTION_GROUP_TTL     = time.Hour
	WEEKLY_LEADERBOARD_TTL = 15 * 24 * time.Hour
)

var ErrInvalidSession = errors.New("invalid session")

func dbKeyStageSession(gameSlug string, userID string) string {
	return fmt.Sprintf("stage:%s:%s", strings.ToLower(gameSlug), userID)
}

func dbKeyLeaderboard(name string) string {
	return fmt.Sprintf("leaderboard:%s", strings.ToLower(name))
}

func dbKeyQuestionGroup(gameSlug string, level int) string {
	return fmt.Sprintf("game:%s:question:level:%d", strings.ToLower(gameSlug), level)
}

// WeeklyLeaderboard names the weekly board for the week starting at weekID.
func WeeklyLeaderboard(weekID string) string {
	return fmt.Sprintf("%s:%s", LEADERBOARD_WEEKLY, weekID)
}

func GetStageSession(ctx context.Context, cmd redis.Cmdable, gameSlug string, userID string) (*models.StageSession, error) {
	var v *models.StageSession
	b, err := cmd.Get(ctx, dbKeyStageSession(gameSlug, userID)).Bytes()
	if err != nil {
		return nil, err
	}

	err = msgpack.Unmarshal(b, &v)
	return v, err
}

func SaveStageSession(ctx context.Context, cmd redis.Cmdable, v *models.StageSession, ttl time.Duration) (*models.StageSession, error) {
	if v.GameSlug == "" || v.UserID == "" {
		return nil, ErrInvalidSession
	}

	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}

	err = cmd.Set(ctx, dbKeyStageSession(v.GameSlug, v.UserID), b, ttl).Err()
	if err != nil {
		return nil, err
	}

	return v, nil
}

func DeleteStageSession(ctx context.Context, cmd redis.Cmdable, gameSlug string, userID string) error {
	return cmd.Del(ctx, dbKeyStageSession(gameSlug, userID)).Err()
}

func QuestionGroupSize(ctx context.Context, cmd redis.Cmdable, gameSlug string, level int) (int64, error) {
	return cmd.SCard(ctx, dbKeyQuestionGroup(gameSlug, level)).Result()
}

// RandomQuestionsFromGroup returns up to n distinct question ids.
func RandomQuestionsFromGroup(ctx context.Context, cmd redis.Cmdable, gameSlug string, level int, n int) ([]int64, error) {
	members, err := cmd.SRandMemberN(ctx, dbKeyQuestionGroup(gameSlug, level), int64(n)).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func AddQuestionsToGroup(ctx context.Context, cmd redis.Cmdable, gameSlug string, level int, questionIDs []int64) error {
	key := dbKeyQuestionGroup(gameSlug, level)
	_, err := cmd.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(questionIDs) > 0 {
			qs := make([]any, len(questionIDs))
			for i, v := range questionIDs {
				qs[i] = v
			}
			pipe.SAdd(ctx, key, qs...)
			pipe.Expire(ctx, key, QUESTION_GROUP_TTL)
		}
		return nil
	})
	return err
}

func DeleteGameQuestionGroups(ctx context.Context, cmd redis.UniversalClient, gameSlug string) error {
	return caching.DeleteKeys(ctx, cmd, fmt.Sprintf("game:%s:question:level:*", strings.ToLower(gameSlug)))
}

// IncrLeaderboard adds points for a user and returns the new score.
func IncrLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, userID string, points float64, ttl time.Duration) (float64, error) {
	key := dbKeyLeaderboard(name)
	var incr *redis.FloatCmd
	_, err := cmd.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.ZIncrBy(ctx, key, points, userID)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func SetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, items []*models.LeaderboardItem) error {
	if len(items) == 0 {
		return nil
	}
	members := make([]redis.Z, len(items))
	for i, v := range items {
		members[i] = redis.Z{Score: v.Score, Member: v.UserID}
	}
	return cmd.ZAdd(ctx, dbKeyLeaderboard(name), members...).Err()
}

func ClearLeaderboard(ctx context.Context, cmd redis.Cmdable, name string) error {
	return cmd.Del(ctx, dbKeyLeaderboard(name)).Err()
}

// ClearLeaderboards drops every board whose name matches pattern, except the
// named boards in keep.
func ClearLeaderboards(ctx context.Context, cmd redis.UniversalClient, pattern string, keep ...string) error {
	except := make([]string, 0, len(keep))
	for _, name := range keep {
		except = append(except, dbKeyLeaderboard(name))
	}
	return caching.DeleteKeys(ctx, cmd, dbKeyLeaderboard(pattern), except...)
}

func GetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, num int) ([]*models.LeaderboardItem, error) {
	results := make([]*models.LeaderboardItem, 0)
	if num <= 0 {
		return results, nil
	}

	items, err := cmd.ZRevRangeWithScores(ctx, dbKeyLeaderboard(name), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	for i, item := range items {
		results = append(results, &models.LeaderboardItem{
			UserID: item.Member.(string),
			Score:  item.Score,
			Rank:   i + 1,
		})
	}

	return results, nil
}

// GetRankWithScore returns redis.Nil when the user is not on the board.
func GetRankWithScore(ctx context.Context, cmd redis.Cmdable, name string, userID string) (*models.LeaderboardItem, error) {
	key := dbKeyLeaderboard(name)
	rank, err := cmd.ZRevRank(ctx, key, userID).Result()
	if err != nil {
		return nil, err
	}

	score, err := cmd.ZScore(ctx, key, userID).Result()
	if err != nil {
		return nil, err
	}

	return &models.LeaderboardItem{UserID: userID, Score: score, Rank: int(rank) + 1}, nil
}

func GetLeaderboardParticipantsCount(ctx context.Context, cmd redis.Cmdable, name string) (int64, error) {
	return cmd.ZCard(ctx, dbKeyLeaderboard(name)).Result()
}
