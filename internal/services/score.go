package services

import (
	"context"
	"errors"
	"time"

	"canedu/internal/datastore"
	"canedu/internal/interfaces"
	"canedu/internal/models"
	"canedu/internal/pkg/caching"
	"canedu/internal/pkg/limiter"
	"canedu/internal/pkg/logger"
	"canedu/internal/progression"

	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// SyncConflictError carries the stored snapshot a stale sync lost against.
type SyncConflictError struct {
	Current *models.ScoreSnapshot
}

func (e *SyncConflictError) Error() string {
	return progression.ErrStaleSnapshot.Error()
}

func (e *SyncConflictError) Unwrap() error {
	return progression.ErrStaleSnapshot
}

type ServiceScore struct {
	container  *do.Injector
	rs         *redsync.Redsync
	postgresDB *bun.DB
	cache      caching.Cache
	limiter    interfaces.Limiter
	log        *logger.Logger

	serviceConfig      *ServiceConfig
	serviceLeaderboard *ServiceLeaderboard
}

func NewServiceScore(container *do.Injector) (*ServiceScore, error) {
	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	log, err := do.Invoke[*logger.Logger](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	serviceLeaderboard, err := do.Invoke[*ServiceLeaderboard](container)
	if err != nil {
		return nil, err
	}

	return &ServiceScore{container, rs, postgresDB, cache, limiter, log.With("service", "score"), serviceConfig, serviceLeaderboard}, nil
}

func (service *ServiceScore) GetScores(ctx context.Context, userID string) (*models.ScoreSnapshot, error) {
	callback := func() (*models.ScoreSnapshot, error) {
		return datastore.EnsureScoreSnapshot(ctx, service.postgresDB, progression.NewScore(userID))
	}

	// primary only: clients sync with the version they read here
	score, err := caching.UseCache(ctx, service.cache, DBKeyScore(userID), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return score, nil
}

func (service *ServiceScore) RecordAnswer(ctx context.Context, userID string, answer models.AnswerRecord) (*models.AnswerResult, error) {
	return service.RecordAnswers(ctx, userID, []models.AnswerRecord{answer})
}

// RecordAnswers applies answers in order with a single write.
func (service *ServiceScore) RecordAnswers(ctx context.Context, userID string, answers []models.AnswerRecord) (*models.AnswerResult, error) {
	rules := service.serviceConfig.Rules(ctx)
	now := time.Now()
	leveledUp := false

	score, err := service.mutate(ctx, userID, func(s *models.ScoreSnapshot) error {
		for _, a := range answers {
			up, err := rules.RecordAnswer(s, a.Type, a.Correct, now)
			if err != nil {
				return errorx.Wrap(err, errorx.Validation)
			}
			leveledUp = leveledUp || up
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.AnswerResult{Score: score, LeveledUp: leveledUp}, nil
}

// SyncScores merges a client snapshot. A stale version fails with a
// *SyncConflictError holding the stored snapshot.
func (service *ServiceScore) SyncScores(ctx context.Context, userID string, in *models.ScoreSync) (*models.ScoreSnapshot, error) {
	err := service.limiter.Allow(ctx, LimitKeyScoreSync(userID), redis_rate.PerMinute(SCORE_SYNC_RATE_LIMIT_PER_MINUTE))
	if err != nil {
		if errors.Is(err, limiter.ErrRateLimited) {
			return nil, errorx.Wrap(err, errorx.RateLimiting)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	rules := service.serviceConfig.Rules(ctx)
	return service.mutate(ctx, userID, func(s *models.ScoreSnapshot) error {
		err := rules.MergeSync(s, in, time.Now())
		if errors.Is(err, progression.ErrStaleSnapshot) {
			return &SyncConflictError{Current: s}
		}
		if err != nil {
			return errorx.Wrap(err, errorx.Validation)
		}
		return nil
	})
}

func (service *ServiceScore) mutate(ctx context.Context, userID string, fn func(s *models.ScoreSnapshot) error) (*models.ScoreSnapshot, error) {
	mutex := service.rs.NewMutex(LockKeyScore(userID), redsync.WithExpiry(10*time.Second))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errorx.Wrap(ErrScoreLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.UnlockContext(ctx)

	score, err := datastore.EnsureScoreSnapshot(ctx, service.postgresDB, progression.NewScore(userID))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	before := score.TotalScore

	if err := fn(score); err != nil {
		return nil, err
	}

	err = datastore.UpdateScoreSnapshot(ctx, service.postgresDB, score)
	if errors.Is(err, datastore.ErrVersionConflict) {
		return nil, errorx.Wrap(err, errorx.Invalid)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if err := service.cache.Delete(ctx, DBKeyScore(userID)); err != nil && !errors.Is(err, caching.ErrCacheMiss) {
		service.log.Warn("invalidate score cache", "user_id", userID, "error", err)
	}

	if err := service.serviceLeaderboard.Record(ctx, userID, score.TotalScore, score.TotalScore-before, time.Now()); err != nil {
		service.log.Warn("update leaderboard", "user_id", userID, "error", err)
	}

	return score, nil
}
