package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canedu/internal/datastore"
	"canedu/internal/datastore/redis_store"
	"canedu/internal/models"
	"canedu/internal/pkg"
	"canedu/internal/pkg/caching"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceLeaderboard struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	redisDBCache       redis.UniversalClient
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceUser   *ServiceUser
	serviceConfig *ServiceConfig
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	dbRedisCache, err := do.InvokeNamed[redis.UniversalClient](container, "redis-cache")
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, db, dbRedisCache, readonlyPostgresDB, cache, readonlyCache, serviceUser, serviceConfig}, nil
}

func (service *ServiceLeaderboard) GetOverallLeaderboard(ctx context.Context, user *models.User) (*models.LeaderboardResponse, error) {
	limit := service.serviceConfig.LeaderboardLimit(ctx)
	return service.getLeaderboard(ctx, user, redis_store.LEADERBOARD_OVERALL, limit)
}

func (service *ServiceLeaderboard) GetWeeklyLeaderboard(ctx context.Context, user *models.User) (*models.LeaderboardResponse, error) {
	limit := service.serviceConfig.LeaderboardLimit(ctx)
	return service.getLeaderboard(ctx, user, redis_store.WeeklyLeaderboard(pkg.WeekID(time.Now())), limit)
}

// Record sets the overall score of a user to total and credits delta points
// to the current week.
func (service *ServiceLeaderboard) Record(ctx context.Context, userID string, total int, delta int, now time.Time) error {
	err := redis_store.SetLeaderboard(ctx, service.redisDB, redis_store.LEADERBOARD_OVERALL, []*models.LeaderboardItem{
		{UserID: userID, Score: float64(total)},
	})
	if err != nil {
		return err
	}

	if delta > 0 {
		weekly := redis_store.WeeklyLeaderboard(pkg.WeekID(now))
		_, err = redis_store.IncrLeaderboard(ctx, service.redisDB, weekly, userID, float64(delta), redis_store.WEEKLY_LEADERBOARD_TTL)
		if err != nil {
			return err
		}
	}

	// cached pages expire within CACHE_TTL_1_MIN
	return nil
}

func (service *ServiceLeaderboard) ClearLeaderboardCache(ctx context.Context, leaderboardName string) error {
	return caching.DeleteKeys(ctx, service.redisDBCache, fmt.Sprintf("leaderboard_by_user:%s*", leaderboardName))
}

// ResetWeekly drops every weekly board except the one for now's week.
func (service *ServiceLeaderboard) ResetWeekly(ctx context.Context, now time.Time) error {
	current := redis_store.WeeklyLeaderboard(pkg.WeekID(now))
	err := redis_store.ClearLeaderboards(ctx, service.redisDB, redis_store.LEADERBOARD_WEEKLY+":*", current)
	if err != nil {
		return err
	}

	return service.ClearLeaderboardCache(ctx, redis_store.LEADERBOARD_WEEKLY)
}

// RebuildOverall reloads the overall board from stored score totals.
func (service *ServiceLeaderboard) RebuildOverall(ctx context.Context) (int, error) {
	scores, err := datastore.GetTopScores(ctx, service.readonlyPostgresDB, LEADERBOARD_REBUILD_LIMIT)
	if err != nil {
		return 0, err
	}

	items := make([]*models.LeaderboardItem, 0, len(scores))
	for _, s := range scores {
		items = append(items, &models.LeaderboardItem{UserID: s.UserID, Score: float64(s.TotalScore)})
	}

	err = redis_store.ClearLeaderboard(ctx, service.redisDB, redis_store.LEADERBOARD_OVERALL)
	if err != nil {
		return 0, err
	}

	err = redis_store.SetLeaderboard(ctx, service.redisDB, redis_store.LEADERBOARD_OVERALL, items)
	if err != nil {
		return 0, err
	}

	return len(items), service.ClearLeaderboardCache(ctx, redis_store.LEADERBOARD_OVERALL)
}

func (service *ServiceLeaderboard) getLeaderboard(ctx context.Context, user *models.User, leaderboardName string, limit int) (*models.LeaderboardResponse, error) {
	callback := func() (*models.LeaderboardResponse, error) {
		leaderboard, err := redis_store.GetLeaderboard(ctx, service.redisDB, leaderboardName, limit)
		if err != nil {
			return nil, err
		}

		me, err := redis_store.GetRankWithScore(ctx, service.redisDB, leaderboardName, user.ID)
		if errors.Is(err, redis.Nil) {
			me = &models.LeaderboardItem{UserID: user.ID}
		} else if err != nil {
			return nil, err
		}
		me.DisplayName = user.DisplayName

		ids := make([]string, 0, len(leaderboard))
		for _, item := range leaderboard {
			ids = append(ids, item.UserID)
		}
		users, err := service.serviceUser.FindUsersByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, item := range leaderboard {
			if u := users[item.UserID]; u != nil {
				item.DisplayName = censorName(u.DisplayName)
			}
		}

		total, err := redis_store.GetLeaderboardParticipantsCount(ctx, service.redisDB, leaderboardName)
		if err != nil {
			return nil, err
		}

		return &models.LeaderboardResponse{Leaderboard: leaderboard, Me: me, Total: total}, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyLeaderboardByUser(leaderboardName, user.ID, limit), CACHE_TTL_1_MIN, callback)
}

// censorName keeps the first two and the last rune of a name.
func censorName(name string) string {
	r := []rune(name)
	if len(r) < 3 {
		return name
	}
	return string(r[:2]) + "*****" + string(r[len(r)-1])
}
